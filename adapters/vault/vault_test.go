package vault

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestVault() *Vault {
	return NewVault(bcrypt.MinCost, []byte("digest-key-for-tests")).(*Vault)
}

func TestVault_HashAndVerify(t *testing.T) {
	v := newTestVault()

	hash, err := v.Hash("Abcd123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcd123!", hash)
	assert.True(t, v.Verify("Abcd123!", hash))
	assert.False(t, v.Verify("Abcd123?", hash))
}

func TestVault_HashIsSalted(t *testing.T) {
	v := newTestVault()

	first, err := v.Hash("same-password")
	require.NoError(t, err)
	second, err := v.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, v.Verify("same-password", first))
	assert.True(t, v.Verify("same-password", second))
}

func TestVault_VerifyGarbageHash(t *testing.T) {
	v := newTestVault()
	assert.False(t, v.Verify("password", "not-a-bcrypt-hash"))
}

func TestNewVault_ClampsCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"zero uses default", 0, DefaultCost},
		{"below min", 1, bcrypt.MinCost},
		{"above max", 99, bcrypt.MaxCost},
		{"in range", 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVault(tt.cost, nil).(*Vault)
			assert.Equal(t, tt.want, v.cost)
		})
	}
}

func TestVault_Digest(t *testing.T) {
	v := newTestVault()

	a := v.Digest("secret")
	assert.Len(t, a, 64)
	assert.Equal(t, a, v.Digest("secret"))
	assert.NotEqual(t, a, v.Digest("secret2"))

	other := NewVault(bcrypt.MinCost, []byte("another-key")).(*Vault)
	assert.NotEqual(t, a, other.Digest("secret"), "digest must depend on the key")
}

func TestVault_RandomToken(t *testing.T) {
	v := newTestVault()

	tok, err := v.RandomToken(DefaultTokenBytes)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultTokenBytes)

	other, err := v.RandomToken(0)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
	assert.Len(t, other, len(tok))
}
