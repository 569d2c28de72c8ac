package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// DefaultRefreshTTL is the refresh secret lifetime when none is configured
const DefaultRefreshTTL = 30 * 24 * time.Hour

// SessionService manages opaque refresh secrets. Only their digests are stored.
type SessionService struct {
	repo  ports.RefreshTokenRepository
	vault ports.CredentialVault
	clock ports.Clock

	ttl        time.Duration
	tokenBytes int
}

// NewSessionService creates a new session service
func NewSessionService(
	repo ports.RefreshTokenRepository,
	vault ports.CredentialVault,
	clock ports.Clock,
	ttl time.Duration,
) *SessionService {
	if clock == nil {
		clock = ports.SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &SessionService{
		repo:       repo,
		vault:      vault,
		clock:      clock,
		ttl:        ttl,
		tokenBytes: 48,
	}
}

// TTL returns the lifetime given to new refresh secrets
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create issues a new refresh secret for the account
func (s *SessionService) Create(ctx context.Context, accountID string) (string, *core.RefreshToken, error) {
	raw, token, err := s.newRecord(accountID)
	if err != nil {
		return "", nil, err
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return raw, token, nil
}

func (s *SessionService) newRecord(accountID string) (string, *core.RefreshToken, error) {
	raw, err := s.vault.RandomToken(s.tokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	now := s.clock.Now()
	return raw, &core.RefreshToken{
		ID:        uuid.New().String(),
		TokenHash: s.vault.Digest(raw),
		AccountID: accountID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}, nil
}

// Validate returns the live record for raw. Fails with core.ErrTokenNotFound,
// core.ErrTokenRevoked or core.ErrTokenExpired.
func (s *SessionService) Validate(ctx context.Context, raw string) (*core.RefreshToken, error) {
	if raw == "" {
		return nil, core.ErrTokenNotFound
	}

	token, err := s.repo.GetByHash(ctx, s.vault.Digest(raw))
	if err != nil {
		return nil, err
	}
	if token.IsRevoked() {
		return nil, core.ErrTokenRevoked
	}
	if !token.IsActiveAt(s.clock.Now()) {
		return nil, core.ErrTokenExpired
	}
	return token, nil
}

// Rotate revokes raw and stores its replacement for the same account in one
// repository call, so a failed store leaves raw live. When two callers race
// on one secret only the one whose revoke lands wins. The other gets
// core.ErrTokenRevoked.
func (s *SessionService) Rotate(ctx context.Context, raw string) (string, *core.RefreshToken, error) {
	old, err := s.Validate(ctx, raw)
	if err != nil {
		return "", nil, err
	}

	newRaw, next, err := s.newRecord(old.AccountID)
	if err != nil {
		return "", nil, err
	}

	won, err := s.repo.Rotate(ctx, old.TokenHash, s.clock.Now(), next)
	if err != nil {
		return "", nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !won {
		return "", nil, core.ErrTokenRevoked
	}

	return newRaw, next, nil
}

// Revoke kills every live record matching raw. A missing record is not an
// error; the matched record is returned when there is one.
func (s *SessionService) Revoke(ctx context.Context, raw string) (*core.RefreshToken, error) {
	if raw == "" {
		return nil, nil
	}

	hash := s.vault.Digest(raw)
	token, err := s.repo.GetByHash(ctx, hash)
	if err != nil && !errors.Is(err, core.ErrTokenNotFound) {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if _, err := s.repo.RevokeByHash(ctx, hash, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return token, nil
}
