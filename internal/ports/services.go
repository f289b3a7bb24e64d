package ports

import (
	"context"
	"time"
)

// TokenClaims carries the identity encoded in an access token
type TokenClaims struct {
	UserID string
	Role   string
}

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and verifies passwords
type PasswordService interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// RateLimitService throttles repeated calls per key
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
}
