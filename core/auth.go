package core

import "time"

// Account represents a registered user
type Account struct {
	ID           string    // Unique account identifier
	Email        string    // Normalized (trimmed, lower-cased) email
	PasswordHash string    // Credential hash, never the plaintext
	DisplayName  *string   // Optional display name
	CreatedAt    time.Time // When the account was registered
}

// Challenge represents a human-verification challenge
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	Answer    string    // Expected answer, lower-cased
	ExpiresAt time.Time // When the challenge expires
}

// IsExpiredAt reports whether the challenge is no longer answerable at t.
func (c *Challenge) IsExpiredAt(t time.Time) bool {
	return t.After(c.ExpiresAt)
}

// IssuedChallenge is what the client receives for a new challenge
type IssuedChallenge struct {
	ID    string // Challenge identifier to echo back on register
	Image string // Renderable challenge artifact (data URI)
}

// AccessClaims is the content of a signed access token
type AccessClaims struct {
	ID        string    // Unique token identifier
	Subject   string    // Account ID
	Email     string    // Account email at issuance
	IssuedAt  time.Time // When the token was issued
	ExpiresAt time.Time // When the token stops being accepted
}

// RefreshToken is the server-side record of an opaque refresh secret
type RefreshToken struct {
	ID        string     // Unique record identifier
	TokenHash string     // Digest of the raw secret
	AccountID string     // Owning account
	ExpiresAt time.Time  // When the secret stops being accepted
	RevokedAt *time.Time // nil while the secret is live
	CreatedAt time.Time  // When the record was created
}

// IsRevoked reports whether the record has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsActiveAt reports whether the record can be exchanged at the given time.
func (t *RefreshToken) IsActiveAt(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
}
