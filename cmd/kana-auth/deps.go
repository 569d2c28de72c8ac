package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/layer-3/kana-auth/adapters/captcha"
	"github.com/layer-3/kana-auth/adapters/events"
	"github.com/layer-3/kana-auth/adapters/postgres"
	"github.com/layer-3/kana-auth/adapters/store"
	"github.com/layer-3/kana-auth/adapters/tokenizer"
	"github.com/layer-3/kana-auth/adapters/vault"
	"github.com/layer-3/kana-auth/internal/config"
	"github.com/layer-3/kana-auth/ports"
	"github.com/layer-3/kana-auth/service"
)

const (
	// captchaLength is the number of characters drawn on a challenge image.
	captchaLength = 4
	// connectTimeout bounds how long startup waits for Postgres and Redis.
	connectTimeout = 10 * time.Second
)

// deps holds the wired service and the handles to release on shutdown.
type deps struct {
	auth    *service.AuthService
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps wires adapters from configuration. Postgres and Redis are used
// when their URLs are set; otherwise in-memory stores stand in.
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{}
	clock := ports.SystemClock

	var (
		accounts ports.AccountRepository
		refresh  ports.RefreshTokenRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
		accounts = postgres.NewAccountRepository(pool)
		refresh = postgres.NewRefreshTokenRepository(pool)
		logger.Info("using postgres repositories")
	} else {
		accounts = store.NewMemoryAccountRepository()
		refresh = store.NewMemoryRefreshTokenRepository()
		logger.Warn("DATABASE_URL not set, accounts and sessions are kept in memory")
	}

	var (
		challenges ports.ChallengeStore
		eventPub   ports.EventPublisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, oops.Code("CONFIG_INVALID").With("key", "REDIS_URL").Wrap(err)
		}
		client := redis.NewClient(opts)
		d.closers = append(d.closers, func() { _ = client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			d.Close()
			return nil, oops.Code("EVENTS_INIT_FAILED").Wrap(err)
		}
		d.closers = append(d.closers, func() { _ = publisher.Close() })

		challenges = store.NewRedisChallengeStore(client)
		eventPub = events.NewWatermillPublisher(publisher, clock)
		logger.Info("using redis challenge store and event stream")
	} else {
		challenges = store.NewMemoryChallengeStore()
		eventPub = events.NewLogPublisher(logger)
	}

	v := vault.NewVault(cfg.BcryptCost, []byte(cfg.JWTRefreshSecret))

	d.auth = service.NewAuthService(service.Dependencies{
		Accounts:   accounts,
		Challenges: service.NewChallengeService(challenges, captcha.NewBase64Renderer(captchaLength), clock, logger),
		Sessions:   service.NewSessionService(refresh, v, clock, cfg.RefreshTTL()),
		Vault:      v,
		Tokenizer:  tokenizer.NewJWTTokenizer([]byte(cfg.JWTAccessSecret), cfg.JWTIssuer, cfg.JWTAudience, clock),
		Events:     eventPub,
		Clock:      clock,
		Logger:     logger,
		AccessTTL:  cfg.AccessTTL(),
	})

	return d, nil
}
