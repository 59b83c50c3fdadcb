package services

import (
	"context"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/repositories"
)

// MentorStore is the mentor persistence used by the services
type MentorStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Mentor, error)
	GetByID(ctx context.Context, id string) (*models.Mentor, error)
	Create(ctx context.Context, m *models.Mentor) error
	Count(ctx context.Context) (int64, error)
}

// StudentStore is the relational student record persistence
type StudentStore interface {
	GetByProfileID(ctx context.Context, id string) (*models.StudentAggregate, error)
	GetByEmail(ctx context.Context, email string) (*models.StudentAggregate, error)
	List(ctx context.Context, filter repositories.StudentFilter) ([]*models.StudentAggregate, error)
	Create(ctx context.Context, info models.PersonalInfo) (*models.StudentAggregate, error)
	UpdateRecord(ctx context.Context, profileID string, fn func(*models.StudentRecord) error) (*models.StudentAggregate, error)
	UpdatePhoto(ctx context.Context, profileID, url string) error
	SetBan(ctx context.Context, email string, isBan bool) error
	AssignMentor(ctx context.Context, email, mentorID string) error
}

// TokenStore is the revoked access token list
type TokenStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RecordStore is the document store holding one record per student
type RecordStore interface {
	List(ctx context.Context) ([]*models.RecordDocument, error)
	GetByID(ctx context.Context, id string) (*models.RecordDocument, error)
	SaveRecord(ctx context.Context, id string, rec models.StudentRecord) (time.Time, error)
	UpsertByEmail(ctx context.Context, email string, rec models.StudentRecord) (time.Time, error)
}

var (
	_ MentorStore  = (*repositories.MentorRepository)(nil)
	_ StudentStore = (*repositories.StudentRepository)(nil)
	_ TokenStore   = (*repositories.TokenRepository)(nil)
	_ RecordStore  = (*repositories.RecordDocumentRepository)(nil)
)
