package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the account email
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
