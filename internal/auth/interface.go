package auth

import "filevault/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The resolver depends on this so tests can mint tokens with a shared secret.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
