package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"filevault/internal/domain"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// publicPaths are served without a credential
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware resolves the Authorization header to an actor and stores it
// in the request context. Requests without a valid actor get 401.
func AuthMiddleware(resolver services.IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			credential := r.Header.Get("Authorization")
			actor, err := resolver.Resolve(r.Context(), credential)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="filevault"`)
					httputil.RespondError(w, http.StatusUnauthorized, "missing or invalid credentials")
					return
				}
				logger.Error("identity resolution failed", "error", err, "path", r.URL.Path)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, httputil.WithActor(r, actor, credential))
		})
	}
}
