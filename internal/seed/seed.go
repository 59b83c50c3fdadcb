package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/config"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/deptce/mentorship/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// MentorStore is the part of the mentor repository the seeder needs
type MentorStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, m *models.Mentor) error
}

// CreateDefaultData creates the configured mentor account when no mentor
// exists yet. Without a configured email it does nothing.
func CreateDefaultData(ctx context.Context, mentors MentorStore, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Seed.MentorEmail == "" {
		lgr.Debug().Msg("No seed mentor configured, skipping default data")
		return nil
	}

	n, err := mentors.Count(ctx)
	if err != nil {
		return fmt.Errorf("error counting mentors: %w", err)
	}
	if n > 0 {
		lgr.Debug().Int64("mentors", n).Msg("Mentors already present, skipping seed")
		return nil
	}

	s := cfg.Seed
	if err := validation.MentorAccount(s.MentorEmail, s.MentorPassword, s.MentorName, s.Semester); err != nil {
		return fmt.Errorf("invalid seed mentor: %w", err)
	}

	hash, err := auth.HashPassword(s.MentorPassword)
	if err != nil {
		return fmt.Errorf("error hashing seed mentor password: %w", err)
	}

	mentor := &models.Mentor{
		Email:      s.MentorEmail,
		Password:   hash,
		Semester:   s.Semester,
		MentorName: s.MentorName,
	}
	if err := mentors.Create(ctx, mentor); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil
		}
		return fmt.Errorf("error creating seed mentor: %w", err)
	}

	lgr.Info().Str("email", mentor.Email).Str("id", mentor.ID).Msg("Created default mentor")
	return nil
}
