package store

import (
	"context"
	"sync"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// MemoryAccountRepository keeps accounts in process memory
type MemoryAccountRepository struct {
	byID    map[string]*core.Account
	byEmail map[string]string
	mu      sync.RWMutex
}

// NewMemoryAccountRepository creates an empty in-memory account repository
func NewMemoryAccountRepository() ports.AccountRepository {
	return &MemoryAccountRepository{
		byID:    make(map[string]*core.Account),
		byEmail: make(map[string]string),
	}
}

// Create stores a new account
func (r *MemoryAccountRepository) Create(ctx context.Context, account *core.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[account.Email]; taken {
		return core.ErrEmailTaken
	}
	r.byID[account.ID] = cloneAccount(account)
	r.byEmail[account.Email] = account.ID
	return nil
}

// GetByID returns the account with the given id
func (r *MemoryAccountRepository) GetByID(ctx context.Context, id string) (*core.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// GetByEmail returns the account registered with the given email
func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*core.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

// UpdateDisplayName sets the display name of an account
func (r *MemoryAccountRepository) UpdateDisplayName(ctx context.Context, id, displayName string) (*core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	name := displayName
	account.DisplayName = &name
	return cloneAccount(account), nil
}

func cloneAccount(a *core.Account) *core.Account {
	out := *a
	if a.DisplayName != nil {
		name := *a.DisplayName
		out.DisplayName = &name
	}
	return &out
}
