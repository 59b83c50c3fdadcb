package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// OAuth result message types posted to the opener window
const (
	OAuthSuccess = "AUTH_SUCCESS"
	OAuthError   = "AUTH_ERROR"
)

// ErrOAuthDisabled is returned when Google sign-in is not configured
var ErrOAuthDisabled = errors.New("google sign-in is not configured")

// AuthService handles mentor login, student sign-in and logout
type AuthService interface {
	MentorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	OAuthLoginURL(state string) (string, error)
	CompleteOAuth(ctx context.Context, code string) (*dto.OAuthResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthConfig holds sign-in policy
type AuthConfig struct {
	AllowedDomain string
}

type authServiceImpl struct {
	mentors    MentorStore
	students   StudentStore
	tokens     TokenStore
	jwtService *auth.JWTService
	provider   auth.OAuthProvider
	cfg        AuthConfig
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService. provider may be nil when Google
// sign-in is disabled.
func NewAuthService(
	mentors MentorStore,
	students StudentStore,
	tokens TokenStore,
	jwtService *auth.JWTService,
	provider auth.OAuthProvider,
	cfg AuthConfig,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		mentors:    mentors,
		students:   students,
		tokens:     tokens,
		jwtService: jwtService,
		provider:   provider,
		cfg:        cfg,
		logger:     logger,
	}
}

// MentorLogin checks mentor credentials and issues an access token
func (s *authServiceImpl) MentorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	mentor, err := s.mentors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrMentorNotFound) {
			s.logger.Info().Str("email", email).Msg("Login attempt for unknown mentor")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading mentor: %w", err)
	}

	if !auth.CheckPassword(mentor.Password, req.Password) {
		s.logger.Info().Str("email", email).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(auth.Principal{
		ID:    mentor.ID,
		Email: mentor.Email,
		Role:  models.RoleMentor,
	})
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info().Str("mentorID", mentor.ID).Msg("Mentor logged in")
	return &dto.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn,
	}, nil
}

// OAuthLoginURL returns the provider consent URL for state
func (s *authServiceImpl) OAuthLoginURL(state string) (string, error) {
	if s.provider == nil {
		return "", ErrOAuthDisabled
	}
	return s.provider.AuthCodeURL(state), nil
}

// CompleteOAuth exchanges the code, finds or creates the student and issues
// a student token. Failures are reported inside the result so the opener
// always receives a message.
func (s *authServiceImpl) CompleteOAuth(ctx context.Context, code string) (*dto.OAuthResult, error) {
	if s.provider == nil {
		return nil, ErrOAuthDisabled
	}

	user, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Msg("OAuth code exchange failed")
		return oauthFailure("authentication failed"), nil
	}

	if !auth.EmailInDomain(user.Email, s.cfg.AllowedDomain) {
		s.logger.Info().Str("email", user.Email).Msg("OAuth sign-in from disallowed domain")
		return oauthFailure(apperrors.ErrDomainNotAllowed.Error()), nil
	}

	student, err := s.findOrCreateStudent(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to load student for OAuth sign-in")
		return oauthFailure("could not load student record"), nil
	}
	if student.Profile.IsBan {
		return oauthFailure(apperrors.ErrStudentBanned.Error()), nil
	}

	token, err := s.jwtService.GenerateAccessToken(auth.Principal{
		ID:    student.Profile.ID,
		Email: student.Record.PersonalInfo.CollegeEmail,
		Role:  models.RoleStudent,
	})
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info().Str("studentID", student.Profile.ID).Msg("Student signed in")
	return &dto.OAuthResult{
		Type:        OAuthSuccess,
		AccessToken: token.AccessToken,
		User: &dto.OAuthUser{
			ID:      student.Profile.ID,
			Email:   student.Record.PersonalInfo.CollegeEmail,
			Name:    student.Record.PersonalInfo.Name,
			Picture: student.Record.PersonalInfo.Photo,
		},
	}, nil
}

func (s *authServiceImpl) findOrCreateStudent(ctx context.Context, user *auth.OAuthUser) (*models.StudentAggregate, error) {
	student, err := s.students.GetByEmail(ctx, user.Email)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, err
	}

	student, err = s.students.Create(ctx, models.PersonalInfo{
		Name:         user.Name,
		CollegeEmail: user.Email,
		Photo:        user.Picture,
	})
	if apperrors.Is(err, apperrors.ErrConflict) {
		// created concurrently by another callback
		return s.students.GetByEmail(ctx, user.Email)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", user.Email).Msg("Created student on first sign-in")
	return student, nil
}

func oauthFailure(msg string) *dto.OAuthResult {
	return &dto.OAuthResult{Type: OAuthError, Error: msg}
}

// Logout revokes the presented token until it would have expired anyway
func (s *authServiceImpl) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}
	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.tokens.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	s.logger.Info().Str("userID", claims.UserID).Msg("Token revoked")
	return nil
}

// IsRevoked reports whether a token id has been logged out
func (s *authServiceImpl) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.tokens.IsRevoked(ctx, jti)
}
