package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/dberrors"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var mentorColumns = []string{"id", "email", "password", "semester", "mentor_name"}

// MentorRepository handles mentor database operations
type MentorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMentorRepository creates a new MentorRepository
func NewMentorRepository(db *pgxpool.Pool) *MentorRepository {
	return &MentorRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByEmail retrieves a mentor by (case-insensitive) email
func (r *MentorRepository) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	return r.getOne(ctx, squirrel.Eq{"lower(email)": strings.ToLower(email)})
}

// GetByID retrieves a mentor by ID
func (r *MentorRepository) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *MentorRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Mentor, error) {
	sql, args, err := r.sb.Select(mentorColumns...).
		From("mentors").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get mentor SQL")
		return nil, fmt.Errorf("failed to build get mentor query: %w", err)
	}

	var m models.Mentor
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.Email, &m.Password, &m.Semester, &m.MentorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMentorNotFound
		}
		logger.Error().Err(err).Msg("Error scanning mentor row")
		return nil, fmt.Errorf("error getting mentor: %w", err)
	}
	return &m, nil
}

// Create inserts a mentor and fills in its generated ID
func (r *MentorRepository) Create(ctx context.Context, m *models.Mentor) error {
	sql, args, err := r.sb.Insert("mentors").
		Columns("email", "password", "semester", "mentor_name").
		Values(strings.ToLower(m.Email), m.Password, m.Semester, m.MentorName).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create mentor SQL")
		return fmt.Errorf("failed to build create mentor query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "mentors_email_key") {
			return apperrors.NewConflictError(fmt.Sprintf("mentor %s already exists", m.Email))
		}
		logger.Error().Err(err).Str("email", m.Email).Msg("Error executing create mentor query")
		return fmt.Errorf("error creating mentor: %w", err)
	}
	return nil
}

// Count returns the number of mentors
func (r *MentorRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("mentors").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count mentors query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error counting mentors")
		return 0, fmt.Errorf("error counting mentors: %w", err)
	}
	return n, nil
}
