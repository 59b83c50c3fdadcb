package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository keeps the deny-list of revoked access tokens
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Revoke records a token id until its natural expiry. Revoking twice is a no-op.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("revoked_tokens").
		Columns("jti", "expires_at").
		Values(jti, expiresAt).
		Suffix("ON CONFLICT (jti) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("jti", jti).Msg("Error revoking token")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id is on the deny-list
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("revoked_tokens").
		Where(squirrel.Eq{"jti": jti}).
		Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building token lookup SQL")
		return false, fmt.Errorf("failed to build token lookup query: %w", err)
	}

	var revoked bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&revoked); err != nil {
		logger.Error().Err(err).Str("jti", jti).Msg("Error checking token revocation")
		return false, fmt.Errorf("error checking token: %w", err)
	}
	return revoked, nil
}

// PurgeExpired deletes entries whose tokens have expired on their own
func (r *TokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("revoked_tokens").
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error purging expired tokens")
		return 0, fmt.Errorf("error purging tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
