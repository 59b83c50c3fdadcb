package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "mentors_email_key"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"matching constraint", dup, "mentors_email_key", true},
		{"wrapped", fmt.Errorf("insert: %w", dup), "mentors_email_key", true},
		{"other constraint", dup, "personal_info_college_email_key", false},
		{"other code", &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "mentors_email_key"}, "mentors_email_key", false},
		{"plain error", errors.New("boom"), "mentors_email_key", false},
		{"nil", nil, "mentors_email_key", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateConstraintError(tt.err, tt.constraint))
		})
	}
}

func TestForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("assign: %w", &pgconn.PgError{Code: CodeForeignKeyViolation})
	assert.True(t, IsForeignKeyViolation(err))
	assert.Equal(t, CodeForeignKeyViolation, Code(err))
	assert.Empty(t, Code(errors.New("boom")))
}
