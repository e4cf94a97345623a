package services

import (
	"context"
	"io"

	"filevault/internal/domain/models"
)

// CreateFileRequest is a candidate record supplied by a client.
// OwnerID must be set explicitly and match the actor.
type CreateFileRequest struct {
	OwnerID    models.ActorID `json:"owner_id"`
	Name       string         `json:"name"`
	Size       int64          `json:"size"`
	MimeType   string         `json:"mime_type"`
	ObjectPath string         `json:"object_path"`
}

// UploadFileRequest is a blob upload that also creates its record.
type UploadFileRequest struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
	Body     io.Reader
}

// FileService is the record and blob store boundary: every method authorizes
// the actor before touching a store.
type FileService interface {
	// ListFiles returns the actor's records
	ListFiles(ctx context.Context, actor models.ActorID) ([]models.FileRecord, error)

	// GetFile returns a record the actor owns, or domain.ErrNotFound
	GetFile(ctx context.Context, actor models.ActorID, id string) (*models.FileRecord, error)

	// CreateFile inserts a record without uploading bytes
	CreateFile(ctx context.Context, actor models.ActorID, req *CreateFileRequest) (*models.FileRecord, error)

	// UpdateFile applies a patch to a record the actor owns
	UpdateFile(ctx context.Context, actor models.ActorID, id string, patch *models.FilePatch) (*models.FileRecord, error)

	// DeleteFile removes a record the actor owns and its blob
	DeleteFile(ctx context.Context, actor models.ActorID, id string) error

	// UploadObject stores a blob and creates its record
	UploadObject(ctx context.Context, actor models.ActorID, req *UploadFileRequest) (*models.FileRecord, error)

	// DownloadObject opens a blob the actor owns. Caller must close the reader.
	DownloadObject(ctx context.Context, actor models.ActorID, path string) (io.ReadCloser, *models.ObjectInfo, error)

	// DeleteObject removes a blob the actor owns and any record pointing at it
	DeleteObject(ctx context.Context, actor models.ActorID, path string) error
}
