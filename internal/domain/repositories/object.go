package repositories

import (
	"context"
	"io"

	"filevault/internal/domain/models"
)

// ObjectStore is the blob store boundary. Paths are already parsed and authorized.
type ObjectStore interface {
	// Put stores size bytes from r at path
	Put(ctx context.Context, path models.ObjectPath, r io.Reader, size int64, contentType string) (*models.ObjectInfo, error)

	// Get opens the blob at path. Caller must close the reader.
	// Returns domain.ErrNotFound if nothing is stored there.
	Get(ctx context.Context, path models.ObjectPath) (io.ReadCloser, *models.ObjectInfo, error)

	// Delete removes the blob at path. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path models.ObjectPath) error

	// IsPublic reports whether the bucket grants anonymous read access
	IsPublic(ctx context.Context) (bool, error)
}
