package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// RedisChallengeStore is a Redis implementation of the ChallengeStore interface
type RedisChallengeStore struct {
	client redis.Cmdable
	prefix string
}

type redisChallenge struct {
	Answer    string    `json:"answer"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewRedisChallengeStore creates a new Redis challenge store
func NewRedisChallengeStore(client redis.Cmdable) ports.ChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "kana-auth:captcha:",
	}
}

// Put stores a challenge with a TTL matching its expiry
func (s *RedisChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	key := s.prefix + challenge.ID

	payload, err := json.Marshal(redisChallenge{Answer: challenge.Answer, ExpiresAt: challenge.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	// Redis drops the key on its own; the stored expiry stays authoritative
	ttl := time.Until(challenge.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	return nil
}

// Take atomically reads and deletes a challenge with GETDEL
func (s *RedisChallengeStore) Take(ctx context.Context, id string) (*core.Challenge, error) {
	key := s.prefix + id

	val, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take challenge: %w", err)
	}

	var stored redisChallenge
	if err := json.Unmarshal(val, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	return &core.Challenge{
		ID:        id,
		Answer:    stored.Answer,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// SweepExpired is a no-op: Redis expires challenge keys itself
func (s *RedisChallengeStore) SweepExpired(ctx context.Context, now time.Time) error {
	return nil
}
