package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/layer-3/kana-auth/adapters/store"
	"github.com/layer-3/kana-auth/adapters/tokenizer"
	"github.com/layer-3/kana-auth/adapters/vault"
	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedRenderer struct {
	answer string
	err    error
}

func (r fixedRenderer) Generate() (string, string, error) {
	if r.err != nil {
		return "", "", r.err
	}
	return r.answer, "data:image/png;base64,iVBORw0KGgo=", nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	logins  []string
	logouts []string
	err     error
}

func (p *recordingPublisher) PublishLogin(ctx context.Context, accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, accountID)
	return p.err
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, accountID, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, accountID)
	return p.err
}

func (p *recordingPublisher) Logins() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.logins...)
}

func (p *recordingPublisher) Logouts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.logouts...)
}

// faultyRefreshRepo fails selected calls and passes the rest through.
type faultyRefreshRepo struct {
	ports.RefreshTokenRepository
	getErr    error
	rotateErr error
}

func (r *faultyRefreshRepo) GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.RefreshTokenRepository.GetByHash(ctx, tokenHash)
}

func (r *faultyRefreshRepo) Rotate(ctx context.Context, oldHash string, at time.Time, next *core.RefreshToken) (bool, error) {
	if r.rotateErr != nil {
		return false, r.rotateErr
	}
	return r.RefreshTokenRepository.Rotate(ctx, oldHash, at, next)
}

type harness struct {
	auth       *AuthService
	sessions   *SessionService
	challenges *ChallengeService
	store      *store.MemoryChallengeStore
	refresh    *store.MemoryRefreshTokenRepository
	faults     *faultyRefreshRepo
	events     *recordingPublisher
	clock      *fakeClock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := newFakeClock()
	challengeStore := store.NewMemoryChallengeStore().(*store.MemoryChallengeStore)
	refreshRepo := store.NewMemoryRefreshTokenRepository().(*store.MemoryRefreshTokenRepository)
	v := vault.NewVault(4, []byte("refresh-secret-for-tests"))
	events := &recordingPublisher{}

	challenges := NewChallengeService(challengeStore, fixedRenderer{answer: "WXYZ"}, clock, discardLogger())
	faults := &faultyRefreshRepo{RefreshTokenRepository: refreshRepo}
	sessions := NewSessionService(faults, v, clock, DefaultRefreshTTL)
	auth := NewAuthService(Dependencies{
		Accounts:   store.NewMemoryAccountRepository(),
		Challenges: challenges,
		Sessions:   sessions,
		Vault:      v,
		Tokenizer:  tokenizer.NewJWTTokenizer([]byte("access-secret-for-tests"), "kana-auth", "kana-app", clock),
		Events:     events,
		Clock:      clock,
		Logger:     discardLogger(),
	})

	return &harness{
		auth:       auth,
		sessions:   sessions,
		challenges: challenges,
		store:      challengeStore,
		refresh:    refreshRepo,
		faults:     faults,
		events:     events,
		clock:      clock,
	}
}

// putChallenge plants a known challenge so tests can answer it.
func (h *harness) putChallenge(t *testing.T, id, answer string) {
	t.Helper()
	require.NoError(t, h.store.Put(context.Background(), &core.Challenge{
		ID:        id,
		Answer:    answer,
		ExpiresAt: h.clock.Now().Add(ChallengeTTL),
	}))
}

func (h *harness) register(t *testing.T, email, password string) *core.Account {
	t.Helper()
	h.putChallenge(t, "reg-"+email, "abcd")
	account, err := h.auth.Register(context.Background(), RegisterInput{
		Email:         email,
		Password:      password,
		CaptchaID:     "reg-" + email,
		CaptchaAnswer: "abcd",
	})
	require.NoError(t, err)
	return account
}

func requireCode(t *testing.T, err error, want core.Code) {
	t.Helper()
	require.Error(t, err)
	code, ok := core.CodeOf(err)
	require.True(t, ok, "expected a coded error, got %v", err)
	require.Equal(t, want, code)
}

var errBoom = errors.New("boom")
