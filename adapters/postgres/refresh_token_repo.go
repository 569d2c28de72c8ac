package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/layer-3/kana-auth/core"
)

// RefreshTokenRepository implements ports.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	pool poolIface
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(pool poolIface) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

const insertRefreshToken = `
	INSERT INTO refresh_tokens (id, token_hash, account_id, expires_at, revoked_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

const revokeRefreshToken = `
	UPDATE refresh_tokens SET revoked_at = $2
	WHERE token_hash = $1 AND revoked_at IS NULL
`

// Create stores a new refresh token record.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *core.RefreshToken) error {
	_, err := r.pool.Exec(ctx, insertRefreshToken,
		token.ID,
		token.TokenHash,
		token.AccountID,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("REFRESH_CREATE_FAILED").
			With("operation", "insert refresh_token").
			With("account_id", token.AccountID).
			Wrap(err)
	}
	return nil
}

// GetByHash retrieves a record by its token digest.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, token_hash, account_id, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, tokenHash)

	var t core.RefreshToken
	err := row.Scan(&t.ID, &t.TokenHash, &t.AccountID, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REFRESH_NOT_FOUND").Wrap(core.ErrTokenNotFound)
	}
	if err != nil {
		return nil, oops.Code("REFRESH_GET_BY_HASH_FAILED").
			With("operation", "get refresh_token by hash").
			Wrap(err)
	}
	return &t, nil
}

// Rotate revokes the old record and inserts next in one transaction. The
// transaction is rolled back when the old record was already revoked.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, at time.Time, next *core.RefreshToken) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, oops.Code("TX_BEGIN_FAILED").With("operation", "rotate refresh_token").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.Exec(ctx, revokeRefreshToken, oldHash, at)
	if err != nil {
		return false, oops.Code("REFRESH_ROTATE_FAILED").
			With("operation", "update revoked_at").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, insertRefreshToken,
		next.ID,
		next.TokenHash,
		next.AccountID,
		next.ExpiresAt,
		next.RevokedAt,
		next.CreatedAt,
	)
	if err != nil {
		return false, oops.Code("REFRESH_ROTATE_FAILED").
			With("operation", "insert refresh_token").
			With("account_id", next.AccountID).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, oops.Code("TX_COMMIT_FAILED").With("operation", "rotate refresh_token").Wrap(err)
	}
	return true, nil
}

// RevokeByHash revokes every live record with the digest.
func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, tokenHash string, at time.Time) (int64, error) {
	return r.revoke(ctx, tokenHash, at)
}

func (r *RefreshTokenRepository) revoke(ctx context.Context, tokenHash string, at time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, revokeRefreshToken, tokenHash, at)
	if err != nil {
		return 0, oops.Code("REFRESH_REVOKE_FAILED").
			With("operation", "update revoked_at").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}
