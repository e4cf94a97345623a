package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// SessionDenylist records Supabase sessions that were signed out before their tokens expired.
type SessionDenylist interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string, until time.Time) error
}

// ErrRevocationDisabled is returned by RevokeCredential when no denylist is configured.
var ErrRevocationDisabled = errors.New("session revocation is not enabled")

// Resolver implements services.IdentityResolver for "Bearer <jwt>" credentials.
type Resolver struct {
	verifier JWTVerifier
	denylist SessionDenylist
	logger   *slog.Logger
}

var (
	_ services.IdentityResolver = (*Resolver)(nil)
	_ services.SessionRevoker   = (*Resolver)(nil)
)

// NewResolver creates a resolver. denylist may be nil, in which case sessions
// stay valid until their tokens expire.
func NewResolver(verifier JWTVerifier, denylist SessionDenylist, logger *slog.Logger) *Resolver {
	return &Resolver{
		verifier: verifier,
		denylist: denylist,
		logger:   logger,
	}
}

// Resolve returns the actor for an Authorization header value.
// Missing, malformed, invalid and revoked credentials all yield domain.ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, credential string) (models.ActorID, error) {
	claims, err := r.claims(credential)
	if err != nil {
		return "", err
	}

	if r.denylist != nil && claims.SessionID != "" {
		revoked, err := r.denylist.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return "", fmt.Errorf("check session revocation: %w", err)
		}
		if revoked {
			r.logger.Debug("rejected revoked session", "session_id", claims.SessionID, "user_id", claims.Subject)
			return "", domain.ErrUnauthorized
		}
	}

	return claims.Actor(), nil
}

// RevokeCredential signs out the session behind a credential until its token would have expired.
func (r *Resolver) RevokeCredential(ctx context.Context, credential string) error {
	if r.denylist == nil {
		return ErrRevocationDisabled
	}

	claims, err := r.claims(credential)
	if err != nil {
		return err
	}
	if claims.SessionID == "" {
		return fmt.Errorf("token has no session id: %w", domain.ErrValidation)
	}

	until := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	if err := r.denylist.Revoke(ctx, claims.SessionID, until); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	r.logger.Info("session revoked", "session_id", claims.SessionID, "user_id", claims.Subject)
	return nil
}

func (r *Resolver) claims(credential string) (*models.SupabaseClaims, error) {
	token, ok := bearerToken(credential)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return r.verifier.VerifyToken(token)
}

// bearerToken extracts the token from "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsRune(token, ' ') {
		return "", false
	}
	return token, true
}
