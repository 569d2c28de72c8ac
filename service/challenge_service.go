package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// ChallengeTTL is how long an issued challenge stays answerable
const ChallengeTTL = 5 * time.Minute

// ChallengeService issues and consumes single-use human-verification challenges
type ChallengeService struct {
	store    ports.ChallengeStore
	renderer ports.ChallengeRenderer
	clock    ports.Clock
	logger   *slog.Logger

	ttl time.Duration
}

// NewChallengeService creates a new challenge service
func NewChallengeService(
	store ports.ChallengeStore,
	renderer ports.ChallengeRenderer,
	clock ports.Clock,
	logger *slog.Logger,
) *ChallengeService {
	if clock == nil {
		clock = ports.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengeService{
		store:    store,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
		ttl:      ChallengeTTL,
	}
}

// Issue sweeps expired challenges, then renders and stores a new one.
// The plain answer is returned for callers that need it (tests, audits);
// it must never be sent to the client.
func (s *ChallengeService) Issue(ctx context.Context) (core.IssuedChallenge, string, error) {
	now := s.clock.Now()

	if err := s.store.SweepExpired(ctx, now); err != nil {
		s.logger.WarnContext(ctx, "challenge sweep failed", "error", err)
	}

	answer, image, err := s.renderer.Generate()
	if err != nil {
		return core.IssuedChallenge{}, "", fmt.Errorf("failed to render challenge: %w", err)
	}

	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Answer:    strings.ToLower(answer),
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, challenge); err != nil {
		return core.IssuedChallenge{}, "", fmt.Errorf("failed to store challenge: %w", err)
	}

	return core.IssuedChallenge{ID: challenge.ID, Image: image}, challenge.Answer, nil
}

// Consume removes the challenge and reports whether answer solves it.
// Unknown, expired and wrong answers all report false.
func (s *ChallengeService) Consume(ctx context.Context, id, answer string) (bool, error) {
	if id == "" {
		return false, nil
	}

	challenge, err := s.store.Take(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to take challenge: %w", err)
	}
	if challenge == nil || challenge.IsExpiredAt(s.clock.Now()) {
		return false, nil
	}

	return strings.ToLower(strings.TrimSpace(answer)) == challenge.Answer, nil
}
