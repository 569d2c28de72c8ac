package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// MemoryRefreshTokenRepository keeps refresh token records in process memory
type MemoryRefreshTokenRepository struct {
	tokens map[string]*core.RefreshToken
	mu     sync.Mutex
}

// NewMemoryRefreshTokenRepository creates an empty in-memory refresh token repository
func NewMemoryRefreshTokenRepository() ports.RefreshTokenRepository {
	return &MemoryRefreshTokenRepository{
		tokens: make(map[string]*core.RefreshToken),
	}
}

// Create stores a new refresh token record
func (r *MemoryRefreshTokenRepository) Create(ctx context.Context, token *core.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.TokenHash] = cloneRefreshToken(token)
	return nil
}

// GetByHash returns the record with the given digest
func (r *MemoryRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, core.ErrTokenNotFound
	}
	return cloneRefreshToken(token), nil
}

// Rotate revokes the old record and stores next under one lock
func (r *MemoryRefreshTokenRepository) Rotate(ctx context.Context, oldHash string, at time.Time, next *core.RefreshToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.revokeLocked(oldHash, at) {
		return false, nil
	}
	r.tokens[next.TokenHash] = cloneRefreshToken(next)
	return true, nil
}

// RevokeByHash revokes the record with the digest if it is still live
func (r *MemoryRefreshTokenRepository) RevokeByHash(ctx context.Context, tokenHash string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.revokeLocked(tokenHash, at) {
		return 0, nil
	}
	return 1, nil
}

// revokeLocked must be called with mu held.
func (r *MemoryRefreshTokenRepository) revokeLocked(tokenHash string, at time.Time) bool {
	token, ok := r.tokens[tokenHash]
	if !ok || token.RevokedAt != nil {
		return false
	}
	revokedAt := at
	token.RevokedAt = &revokedAt
	return true
}

// Len returns the number of stored records
func (r *MemoryRefreshTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func cloneRefreshToken(t *core.RefreshToken) *core.RefreshToken {
	out := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		out.RevokedAt = &at
	}
	return &out
}
