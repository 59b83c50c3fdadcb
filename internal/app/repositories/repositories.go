package repositories

import (
	"github.com/deptce/mentorship/internal/db"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories holds all the repository instances
type Repositories struct {
	MentorRepository         *MentorRepository
	StudentRepository        *StudentRepository
	TokenRepository          *TokenRepository
	RecordDocumentRepository *RecordDocumentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB, records *mongo.Collection) *Repositories {
	return &Repositories{
		MentorRepository:         NewMentorRepository(pg.Pool),
		StudentRepository:        NewStudentRepository(pg),
		TokenRepository:          NewTokenRepository(pg.Pool),
		RecordDocumentRepository: NewRecordDocumentRepository(records),
	}
}
