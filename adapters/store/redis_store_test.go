package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/kana-auth/core"
)

func newRedisChallengeStore(t *testing.T) (*miniredis.Miniredis, *RedisChallengeStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisChallengeStore(client).(*RedisChallengeStore)
}

func TestRedisChallengeStore_PutTake(t *testing.T) {
	ctx := context.Background()
	_, s := newRedisChallengeStore(t)
	expiresAt := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)

	require.NoError(t, s.Put(ctx, &core.Challenge{ID: "X", Answer: "wxyz", ExpiresAt: expiresAt}))

	got, err := s.Take(ctx, "X")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "X", got.ID)
	assert.Equal(t, "wxyz", got.Answer)
	assert.True(t, got.ExpiresAt.Equal(expiresAt))

	again, err := s.Take(ctx, "X")
	require.NoError(t, err)
	assert.Nil(t, again, "challenge must be single use")
}

func TestRedisChallengeStore_KeyExpires(t *testing.T) {
	ctx := context.Background()
	mr, s := newRedisChallengeStore(t)

	require.NoError(t, s.Put(ctx, &core.Challenge{ID: "X", Answer: "wxyz", ExpiresAt: time.Now().Add(5 * time.Minute)}))
	assert.True(t, mr.Exists("kana-auth:captcha:X"))

	mr.FastForward(6 * time.Minute)
	assert.False(t, mr.Exists("kana-auth:captcha:X"))

	got, err := s.Take(ctx, "X")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisChallengeStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, s := newRedisChallengeStore(t)
	mr.Close()

	_, err := s.Take(ctx, "X")
	assert.Error(t, err)
	assert.NoError(t, s.SweepExpired(ctx, time.Now()))
}
