package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// MemoryChallengeStore is an in-memory implementation of the ChallengeStore interface
type MemoryChallengeStore struct {
	challenges map[string]core.Challenge
	mu         sync.Mutex
}

// NewMemoryChallengeStore creates a new in-memory challenge store
func NewMemoryChallengeStore() ports.ChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]core.Challenge),
	}
}

// Put stores a challenge, replacing any previous entry with the same id
func (s *MemoryChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.ID] = *challenge
	return nil
}

// Take removes and returns a challenge under a single lock
func (s *MemoryChallengeStore) Take(ctx context.Context, id string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.challenges[id]
	if !exists {
		return nil, nil
	}
	delete(s.challenges, id)

	return &challenge, nil
}

// SweepExpired drops every challenge that expired before now
func (s *MemoryChallengeStore) SweepExpired(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, challenge := range s.challenges {
		if challenge.IsExpiredAt(now) {
			delete(s.challenges, id)
		}
	}
	return nil
}

// Len returns the number of pending challenges
func (s *MemoryChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
