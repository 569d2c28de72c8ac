package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/kana-auth/core"
)

func TestSessionService_CreateStoresDigestOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw, record, err := h.sessions.Create(ctx, "acct-1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEqual(t, raw, record.TokenHash)
	assert.Equal(t, "acct-1", record.AccountID)
	assert.Nil(t, record.RevokedAt)
	assert.Equal(t, h.clock.Now().Add(DefaultRefreshTTL), record.ExpiresAt)
	assert.Equal(t, 1, h.refresh.Len())
}

func TestSessionService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("live", func(t *testing.T) {
		h := newHarness(t)
		raw, created, err := h.sessions.Create(ctx, "acct-1")
		require.NoError(t, err)

		got, err := h.sessions.Validate(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sessions.Validate(ctx, "not-a-secret")
		assert.ErrorIs(t, err, core.ErrTokenNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sessions.Validate(ctx, "")
		assert.ErrorIs(t, err, core.ErrTokenNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		h := newHarness(t)
		raw, _, err := h.sessions.Create(ctx, "acct-1")
		require.NoError(t, err)
		h.clock.Advance(DefaultRefreshTTL + time.Second)

		_, err = h.sessions.Validate(ctx, raw)
		assert.ErrorIs(t, err, core.ErrTokenExpired)
	})

	t.Run("revoked", func(t *testing.T) {
		h := newHarness(t)
		raw, _, err := h.sessions.Create(ctx, "acct-1")
		require.NoError(t, err)
		_, err = h.sessions.Revoke(ctx, raw)
		require.NoError(t, err)

		_, err = h.sessions.Validate(ctx, raw)
		assert.ErrorIs(t, err, core.ErrTokenRevoked)
	})
}

func TestSessionService_RotateInvalidatesOldSecret(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	secretA, _, err := h.sessions.Create(ctx, "acct-1")
	require.NoError(t, err)

	secretB, record, err := h.sessions.Rotate(ctx, secretA)
	require.NoError(t, err)
	assert.NotEqual(t, secretA, secretB)
	assert.Equal(t, "acct-1", record.AccountID)

	_, err = h.sessions.Validate(ctx, secretA)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = h.sessions.Validate(ctx, secretB)
	require.NoError(t, err)

	_, _, err = h.sessions.Rotate(ctx, secretB)
	require.NoError(t, err)
	_, _, err = h.sessions.Rotate(ctx, secretB)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestSessionService_RotateFailureKeepsOldSecret(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw, _, err := h.sessions.Create(ctx, "acct-1")
	require.NoError(t, err)

	h.faults.rotateErr = errBoom
	_, _, err = h.sessions.Rotate(ctx, raw)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, h.refresh.Len(), "no replacement may be stored")

	h.faults.rotateErr = nil
	_, err = h.sessions.Validate(ctx, raw)
	require.NoError(t, err, "old secret must stay live after a failed rotate")

	_, _, err = h.sessions.Rotate(ctx, raw)
	require.NoError(t, err)
}

func TestSessionService_ConcurrentRotateHasOneWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw, _, err := h.sessions.Create(ctx, "acct-1")
	require.NoError(t, err)

	var wins, revoked atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := h.sessions.Rotate(ctx, raw)
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, core.ErrTokenRevoked):
				revoked.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), revoked.Load())
	assert.Equal(t, 2, h.refresh.Len())
}

func TestSessionService_RevokeUnknownIsNotAnError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	record, err := h.sessions.Revoke(ctx, "never-issued")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = h.sessions.Revoke(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestSessionService_RevokeReturnsRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw, created, err := h.sessions.Create(ctx, "acct-1")
	require.NoError(t, err)

	record, err := h.sessions.Revoke(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, created.ID, record.ID)

	// second revoke still finds the record but changes nothing
	_, err = h.sessions.Revoke(ctx, raw)
	require.NoError(t, err)
}
