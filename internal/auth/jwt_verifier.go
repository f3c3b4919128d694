package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"carelearn/internal/domain"
)

// allowedAlgorithms are the only signing methods accepted. HMAC is excluded
// so a public JWKS key can never double as a shared secret.
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWTVerifier checks tokens against keys published at a JWKS endpoint.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWTVerifier fetches the key set at jwksURL. keyfunc refreshes it in
// the background following the endpoint's cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return newJWTVerifier(jwks.Keyfunc, logger), nil
}

func newJWTVerifier(kf jwt.Keyfunc, logger *slog.Logger) *JWTVerifier {
	return &JWTVerifier{keyfunc: kf, logger: logger}
}

// VerifyToken returns domain.ErrUnauthorized for every rejected token.
func (v *JWTVerifier) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if claims.Role == "anon" {
		v.logger.Debug("anonymous token rejected", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc stops refreshing when its context ends.
func (v *JWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
