package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"filevault/internal/auth"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// AuthHandler handles session HTTP requests
type AuthHandler struct {
	revoker services.SessionRevoker
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(revoker services.SessionRevoker, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		revoker: revoker,
		logger:  logger,
	}
}

// Logout revokes the session behind the caller's credential
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.revoker.RevokeCredential(r.Context(), httputil.GetCredential(r))
	if errors.Is(err, auth.ErrRevocationDisabled) {
		httputil.RespondError(w, http.StatusNotImplemented, "session revocation is not configured")
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("session revoked", "actor", httputil.GetActor(r))
	httputil.RespondNoContent(w)
}
