// Package validation checks values that do not arrive through request
// binding, such as seeded accounts and CLI input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
)

const (
	PasswordMinLength = 8
	NameMaxLength     = 100
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Rule checks one string field
type Rule struct {
	field    string
	value    string
	required bool
	minLen   int
	maxLen   int
	pattern  *regexp.Regexp
	check    func(string) bool
}

// Field starts a required rule for value
func Field(name, value string) *Rule {
	return &Rule{field: name, value: value, required: true}
}

// Optional lets an empty value pass every other check
func (r *Rule) Optional() *Rule {
	r.required = false
	return r
}

// MinLength sets the minimum length in characters
func (r *Rule) MinLength(n int) *Rule {
	r.minLen = n
	return r
}

// MaxLength sets the maximum length in characters
func (r *Rule) MaxLength(n int) *Rule {
	r.maxLen = n
	return r
}

// Matches requires the value to match pattern
func (r *Rule) Matches(pattern *regexp.Regexp) *Rule {
	r.pattern = pattern
	return r
}

// Satisfies requires fn(value) to hold
func (r *Rule) Satisfies(fn func(string) bool) *Rule {
	r.check = fn
	return r
}

// Err returns a validation error describing the first failed check
func (r *Rule) Err() error {
	if r.value == "" {
		if r.required {
			return r.fail("is required")
		}
		return nil
	}

	n := utf8.RuneCountInString(r.value)
	switch {
	case r.minLen > 0 && n < r.minLen:
		return r.fail(fmt.Sprintf("must be at least %d characters", r.minLen))
	case r.maxLen > 0 && n > r.maxLen:
		return r.fail(fmt.Sprintf("must be at most %d characters", r.maxLen))
	case r.pattern != nil && !r.pattern.MatchString(r.value):
		return r.fail("has an invalid format")
	case r.check != nil && !r.check(r.value):
		return r.fail("is not allowed")
	}
	return nil
}

func (r *Rule) fail(msg string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrValidationFailed, r.field, msg)
}

// All returns the first error among rules
func All(rules ...*Rule) error {
	for _, r := range rules {
		if err := r.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Email validates an email address, case-insensitively
func Email(field, value string) *Rule {
	return Field(field, strings.ToLower(strings.TrimSpace(value))).Matches(emailPattern)
}

// MentorAccount validates the fields of a mentor created outside the API
func MentorAccount(email, password, name, semester string) error {
	return All(
		Email("email", email),
		Field("password", password).MinLength(PasswordMinLength),
		Field("mentor_name", name).MaxLength(NameMaxLength),
		Field("semester", semester).Optional().Satisfies(models.IsSemesterLabel),
	)
}
