package seed

import (
	"context"
	"testing"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/config"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMentors struct {
	count   int64
	created []*models.Mentor
	err     error
}

func (f *fakeMentors) Count(context.Context) (int64, error) { return f.count, nil }

func (f *fakeMentors) Create(_ context.Context, m *models.Mentor) error {
	if f.err != nil {
		return f.err
	}
	m.ID = "m-1"
	f.created = append(f.created, m)
	return nil
}

func seedConfig(email, password string) *config.Config {
	cfg := &config.Config{}
	cfg.Seed.MentorEmail = email
	cfg.Seed.MentorPassword = password
	cfg.Seed.MentorName = "Default Mentor"
	cfg.Seed.Semester = "sem1"
	return cfg
}

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()

	t.Run("creates mentor with hashed password", func(t *testing.T) {
		store := &fakeMentors{}
		require.NoError(t, CreateDefaultData(ctx, store, seedConfig("admin@college.edu", "changeme123"), zerolog.Nop()))
		require.Len(t, store.created, 1)
		assert.NotEqual(t, "changeme123", store.created[0].Password)
		assert.True(t, auth.CheckPassword(store.created[0].Password, "changeme123"))
	})

	t.Run("skips when mentors exist", func(t *testing.T) {
		store := &fakeMentors{count: 2}
		require.NoError(t, CreateDefaultData(ctx, store, seedConfig("admin@college.edu", "changeme123"), zerolog.Nop()))
		assert.Empty(t, store.created)
	})

	t.Run("skips without email", func(t *testing.T) {
		store := &fakeMentors{}
		require.NoError(t, CreateDefaultData(ctx, store, seedConfig("", ""), zerolog.Nop()))
		assert.Empty(t, store.created)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		store := &fakeMentors{}
		err := CreateDefaultData(ctx, store, seedConfig("admin@college.edu", "short"), zerolog.Nop())
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("concurrent creation is not an error", func(t *testing.T) {
		store := &fakeMentors{err: apperrors.NewConflictError("exists")}
		assert.NoError(t, CreateDefaultData(ctx, store, seedConfig("admin@college.edu", "changeme123"), zerolog.Nop()))
	})
}
