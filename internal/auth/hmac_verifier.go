package auth

import (
	"errors"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier implements JWTVerifier for Supabase projects that still sign
// access tokens with the legacy shared JWT secret (HS256).
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a verifier for HS256 tokens signed with secret.
func NewHMACVerifier(secret string, logger *slog.Logger) (JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates an HS256 token and extracts Supabase claims.
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SupabaseClaims{},
		func(*jwt.Token) (interface{}, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	return checkClaims(token, v.logger)
}

// Close is a no-op; the verifier holds no external resources.
func (v *HMACVerifier) Close() error {
	return nil
}
