package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// FileRepository defines data access operations for file records.
// Implementations do not authorize; callers run the record guard first.
type FileRepository interface {
	// Create inserts a record and fills in its generated ID and timestamps
	Create(ctx context.Context, record *models.FileRecord) error

	// GetByID retrieves a record by ID regardless of owner
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)

	// GetByIDForUpdate retrieves a record and locks the row until the
	// surrounding transaction ends. Must be called inside ExecTx.
	GetByIDForUpdate(ctx context.Context, id string) (*models.FileRecord, error)

	// GetByObjectPath retrieves the record that owns a blob path
	GetByObjectPath(ctx context.Context, objectPath string) (*models.FileRecord, error)

	// ListByOwner retrieves all records owned by an actor, newest first
	ListByOwner(ctx context.Context, owner models.ActorID) ([]models.FileRecord, error)

	// Update persists mutable fields (name, mime type, updated_at)
	Update(ctx context.Context, record *models.FileRecord) error

	// Delete removes a record
	Delete(ctx context.Context, id string) error
}
