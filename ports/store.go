package ports

import (
	"context"
	"time"

	"github.com/layer-3/kana-auth/core"
)

// AccountRepository persists accounts
type AccountRepository interface {
	// Create stores a new account. Returns core.ErrEmailTaken when the email
	// is already registered.
	Create(ctx context.Context, account *core.Account) error
	// GetByID returns core.ErrAccountNotFound when no account has the id.
	GetByID(ctx context.Context, id string) (*core.Account, error)
	// GetByEmail expects a normalized email. Returns core.ErrAccountNotFound
	// when no account has the email.
	GetByEmail(ctx context.Context, email string) (*core.Account, error)
	// UpdateDisplayName sets the display name and returns the updated account.
	UpdateDisplayName(ctx context.Context, id, displayName string) (*core.Account, error)
}

// RefreshTokenRepository persists refresh token records by digest
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *core.RefreshToken) error
	// GetByHash returns core.ErrTokenNotFound when no record has the digest.
	GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error)
	// Rotate revokes the record with oldHash, only if it is not revoked yet,
	// and stores next in the same atomic step. Reports false, storing
	// nothing, when another caller revoked the record first.
	Rotate(ctx context.Context, oldHash string, at time.Time, next *core.RefreshToken) (bool, error)
	// RevokeByHash revokes every unrevoked record with the digest and returns
	// how many were affected.
	RevokeByHash(ctx context.Context, tokenHash string, at time.Time) (int64, error)
}

// ChallengeStore holds pending human-verification challenges
type ChallengeStore interface {
	Put(ctx context.Context, challenge *core.Challenge) error
	// Take removes and returns the challenge in one step. Returns (nil, nil)
	// when the id is unknown.
	Take(ctx context.Context, id string) (*core.Challenge, error)
	// SweepExpired drops every challenge that expired before now.
	SweepExpired(ctx context.Context, now time.Time) error
}
