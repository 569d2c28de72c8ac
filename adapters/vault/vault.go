package vault

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/layer-3/kana-auth/ports"
)

// DefaultTokenBytes is the entropy of a refresh secret
const DefaultTokenBytes = 48

// DefaultCost matches the cost the account table was first populated with
const DefaultCost = 10

// Vault implements ports.CredentialVault with bcrypt and HMAC-SHA256
type Vault struct {
	cost      int
	digestKey []byte
}

// NewVault creates a vault. cost is clamped to the bcrypt range; digestKey
// keys the refresh secret digest.
func NewVault(cost int, digestKey []byte) ports.CredentialVault {
	if cost <= 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Vault{cost: cost, digestKey: digestKey}
}

// Hash produces a bcrypt hash of password
func (v *Vault) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify compares password against a bcrypt hash
func (v *Vault) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Digest returns the hex HMAC-SHA256 of input
func (v *Vault) Digest(input string) string {
	mac := hmac.New(sha256.New, v.digestKey)
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}

// RandomToken returns n random bytes encoded as unpadded base64url
func (v *Vault) RandomToken(n int) (string, error) {
	if n <= 0 {
		n = DefaultTokenBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
