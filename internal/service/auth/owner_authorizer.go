package auth

import (
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// OwnerRecordGuard implements services.RecordGuard with ownership checks:
// an actor may only see and change records whose owner_id is the actor.
//
// Decisions are pure functions of their arguments. Callers that mutate must
// pass a row read under lock in the same transaction as the write.
type OwnerRecordGuard struct{}

// NewOwnerRecordGuard creates a new ownership-based record guard
func NewOwnerRecordGuard() *OwnerRecordGuard {
	return &OwnerRecordGuard{}
}

var _ services.RecordGuard = (*OwnerRecordGuard)(nil)

// AuthorizeSelect allows reading a record the actor owns
func (g *OwnerRecordGuard) AuthorizeSelect(actor models.ActorID, record *models.FileRecord) services.Decision {
	return owns(actor, record)
}

// AuthorizeInsert allows creating a record only with owner_id set to the actor.
// A candidate without an owner is denied.
func (g *OwnerRecordGuard) AuthorizeInsert(actor models.ActorID, candidate *models.FileRecord) services.Decision {
	return owns(actor, candidate)
}

// AuthorizeUpdate allows patching a record the actor owns, as long as the
// patch leaves owner_id pointing at the actor.
func (g *OwnerRecordGuard) AuthorizeUpdate(actor models.ActorID, existing *models.FileRecord, patch *models.FilePatch) services.Decision {
	if !owns(actor, existing) {
		return services.Deny
	}
	if patch.ChangesOwner(actor) {
		return services.Deny
	}
	return services.Allow
}

// AuthorizeDelete allows deleting a record the actor owns
func (g *OwnerRecordGuard) AuthorizeDelete(actor models.ActorID, existing *models.FileRecord) services.Decision {
	return owns(actor, existing)
}

func owns(actor models.ActorID, record *models.FileRecord) services.Decision {
	if actor == "" || record == nil || record.OwnerID == "" {
		return services.Deny
	}
	return services.Decision(record.OwnerID == actor)
}

// OwnerBlobGuard implements services.BlobGuard: the first path segment is the
// owning actor's id and only that actor may read, write or delete under it.
type OwnerBlobGuard struct{}

// NewOwnerBlobGuard creates a new path-namespace blob guard
func NewOwnerBlobGuard() *OwnerBlobGuard {
	return &OwnerBlobGuard{}
}

var _ services.BlobGuard = (*OwnerBlobGuard)(nil)

// AuthorizeRead allows downloading from the actor's own namespace
func (g *OwnerBlobGuard) AuthorizeRead(actor models.ActorID, path string) services.Decision {
	return inNamespace(actor, path)
}

// AuthorizeWrite allows uploading into the actor's own namespace.
// The upload still has to pass the bucket policy before it is stored.
func (g *OwnerBlobGuard) AuthorizeWrite(actor models.ActorID, path string) services.Decision {
	return inNamespace(actor, path)
}

// AuthorizeDelete allows removing from the actor's own namespace
func (g *OwnerBlobGuard) AuthorizeDelete(actor models.ActorID, path string) services.Decision {
	return inNamespace(actor, path)
}

func inNamespace(actor models.ActorID, path string) services.Decision {
	if actor == "" {
		return services.Deny
	}
	p, err := models.ParseObjectPath(path)
	if err != nil {
		return services.Deny
	}
	return services.Decision(p.Owner() == actor)
}
