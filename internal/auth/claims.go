package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of bearer token claims the API reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "anon" tokens are rejected
}

// GetUserID returns the subject claim, which identifies the staff member.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*Claims, error)
	Close() error
}
