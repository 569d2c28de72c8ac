package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret   []byte
	issuer   string
	audience string
	clock    ports.Clock
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, issuer, audience string, clock ports.Clock) ports.Tokenizer {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &JWTTokenizer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		clock:    clock,
	}
}

// ClaimsToAccessToken converts access claims to a signed JWT
func (j *JWTTokenizer) ClaimsToAccessToken(claims *core.AccessClaims) (string, error) {
	c := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID,
			Subject:   claims.Subject,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Email: claims.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// AccessTokenToClaims parses and verifies an access token
func (j *JWTTokenizer) AccessTokenToClaims(tokenStr string) (*core.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, core.ErrTokenMalformed
	}

	out := &core.AccessClaims{
		ID:      claims.ID,
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if out.Subject == "" {
		return nil, core.ErrTokenMalformed
	}

	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", core.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", core.ErrTokenMalformed, err)
	}
}
