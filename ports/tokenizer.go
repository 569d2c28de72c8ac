package ports

import "github.com/layer-3/kana-auth/core"

// Tokenizer converts between access claims and signed tokens
type Tokenizer interface {
	ClaimsToAccessToken(claims *core.AccessClaims) (string, error)
	// AccessTokenToClaims fails with core.ErrTokenExpired,
	// core.ErrTokenMalformed or core.ErrInvalidSignature.
	AccessTokenToClaims(token string) (*core.AccessClaims, error)
}
