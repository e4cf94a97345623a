package httputil

import (
	"context"
	"net/http"

	"filevault/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	actorKey      contextKey = "actor"
	credentialKey contextKey = "credential"
)

// WithActor adds the resolved actor and the credential it came from to the request context
func WithActor(r *http.Request, actor models.ActorID, credential string) *http.Request {
	ctx := context.WithValue(r.Context(), actorKey, actor)
	ctx = context.WithValue(ctx, credentialKey, credential)
	return r.WithContext(ctx)
}

// GetActor retrieves the actor from context, returns empty string if not found
func GetActor(r *http.Request) models.ActorID {
	actor, _ := r.Context().Value(actorKey).(models.ActorID)
	return actor
}

// GetCredential retrieves the raw Authorization value the actor was resolved from
func GetCredential(r *http.Request) string {
	credential, _ := r.Context().Value(credentialKey).(string)
	return credential
}
