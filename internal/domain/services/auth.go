package services

import (
	"context"

	"filevault/internal/domain/models"
)

// Decision is the outcome of a guard evaluation.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// IdentityResolver turns a request credential into the current actor.
// Returns domain.ErrUnauthorized when no valid actor can be resolved.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (models.ActorID, error)
}

// SessionRevoker ends a session so its tokens stop resolving before they expire.
type SessionRevoker interface {
	RevokeCredential(ctx context.Context, credential string) error
}

// RecordGuard authorizes operations on file records.
// Implementations must be pure: no I/O, no shared mutable state.
type RecordGuard interface {
	AuthorizeSelect(actor models.ActorID, record *models.FileRecord) Decision
	AuthorizeInsert(actor models.ActorID, candidate *models.FileRecord) Decision
	AuthorizeUpdate(actor models.ActorID, existing *models.FileRecord, patch *models.FilePatch) Decision
	AuthorizeDelete(actor models.ActorID, existing *models.FileRecord) Decision
}

// BlobGuard authorizes operations on raw blob paths. Malformed paths are always denied.
type BlobGuard interface {
	AuthorizeRead(actor models.ActorID, path string) Decision
	AuthorizeWrite(actor models.ActorID, path string) Decision
	AuthorizeDelete(actor models.ActorID, path string) Decision
}

// BucketPolicyEnforcer validates an upload against the bucket configuration.
// It never consults the actor. Returns *domain.PolicyViolationError on rejection.
type BucketPolicyEnforcer interface {
	Check(req *models.UploadRequest) error
}
