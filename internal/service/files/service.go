package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// fileService implements services.FileService. Every method resolves the
// guard decision first and only then touches a store.
type fileService struct {
	repo    repositories.FileRepository
	objects repositories.ObjectStore
	tx      repositories.TransactionManager
	records services.RecordGuard
	blobs   services.BlobGuard
	policy  services.BucketPolicyEnforcer
	logger  *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	repo repositories.FileRepository,
	objects repositories.ObjectStore,
	tx repositories.TransactionManager,
	records services.RecordGuard,
	blobs services.BlobGuard,
	policy services.BucketPolicyEnforcer,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		repo:    repo,
		objects: objects,
		tx:      tx,
		records: records,
		blobs:   blobs,
		policy:  policy,
		logger:  logger,
	}
}

// ListFiles returns the actor's records
func (s *fileService) ListFiles(ctx context.Context, actor models.ActorID) ([]models.FileRecord, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}

	records, err := s.repo.ListByOwner(ctx, actor)
	if err != nil {
		return nil, err
	}

	visible := make([]models.FileRecord, 0, len(records))
	for i := range records {
		if s.records.AuthorizeSelect(actor, &records[i]) == services.Allow {
			visible = append(visible, records[i])
		}
	}
	return visible, nil
}

// GetFile returns a record the actor owns. Missing and foreign records are
// both reported as domain.ErrNotFound.
func (s *fileService) GetFile(ctx context.Context, actor models.ActorID, id string) (*models.FileRecord, error) {
	if !isRecordID(id) {
		return nil, domain.ErrNotFound
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, normalizeNotFound(err)
	}

	if s.records.AuthorizeSelect(actor, record) == services.Deny {
		s.denied(actor, "select", id)
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// CreateFile inserts a record supplied by the client
func (s *fileService) CreateFile(ctx context.Context, actor models.ActorID, req *services.CreateFileRequest) (*models.FileRecord, error) {
	now := time.Now().UTC()
	candidate := &models.FileRecord{
		OwnerID:    req.OwnerID,
		Name:       strings.TrimSpace(req.Name),
		Size:       req.Size,
		MimeType:   strings.TrimSpace(req.MimeType),
		ObjectPath: req.ObjectPath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.records.AuthorizeInsert(actor, candidate) == services.Deny {
		s.denied(actor, "insert", req.ObjectPath)
		return nil, domain.ErrRowLevelSecurity
	}

	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// The record must live in the same namespace as its blob
	if s.blobs.AuthorizeWrite(actor, req.ObjectPath) == services.Deny {
		s.denied(actor, "insert", req.ObjectPath)
		return nil, domain.ErrRowLevelSecurity
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		"id", candidate.ID,
		"object_path", candidate.ObjectPath,
		"owner_id", actor,
	)
	return candidate, nil
}

// UpdateFile applies a patch to a record the actor owns. The row is locked
// while the guard runs so ownership cannot change under the decision.
func (s *fileService) UpdateFile(ctx context.Context, actor models.ActorID, id string, patch *models.FilePatch) (*models.FileRecord, error) {
	if !isRecordID(id) {
		return nil, domain.ErrNotFound
	}
	if err := validatePatch(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var updated *models.FileRecord
	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return normalizeNotFound(err)
		}

		if s.records.AuthorizeUpdate(actor, existing, patch) == services.Deny {
			s.denied(actor, "update", id)
			// Only the owner may learn that the row exists
			if s.records.AuthorizeSelect(actor, existing) == services.Allow {
				return domain.ErrRowLevelSecurity
			}
			return domain.ErrNotFound
		}

		patch.Apply(existing)
		existing.Name = strings.TrimSpace(existing.Name)
		existing.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(txCtx, existing); err != nil {
			return normalizeNotFound(err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated", "id", id, "owner_id", actor)
	return updated, nil
}

// DeleteFile removes a record the actor owns together with its blob
func (s *fileService) DeleteFile(ctx context.Context, actor models.ActorID, id string) error {
	if !isRecordID(id) {
		return domain.ErrNotFound
	}

	var deleted *models.FileRecord
	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return normalizeNotFound(err)
		}

		if s.records.AuthorizeDelete(actor, existing) == services.Deny {
			s.denied(actor, "delete", id)
			return domain.ErrNotFound
		}

		if err := s.repo.Delete(txCtx, id); err != nil {
			return normalizeNotFound(err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	// Blob goes after commit; a failed commit keeps both
	if err := s.deleteBlobOf(ctx, actor, deleted); err != nil {
		s.logger.Error("failed to remove blob of deleted file",
			"id", id,
			"path", deleted.ObjectPath,
			"error", err,
		)
	}

	s.logger.Info("file deleted", "id", id, "owner_id", actor)
	return nil
}

// UploadObject stores a blob and creates its record. Order: blob guard,
// bucket policy, record guard, then row insert and blob write in one transaction.
func (s *fileService) UploadObject(ctx context.Context, actor models.ActorID, req *services.UploadFileRequest) (*models.FileRecord, error) {
	if s.blobs.AuthorizeWrite(actor, req.Path) == services.Deny {
		s.denied(actor, "upload", req.Path)
		return nil, domain.ErrRowLevelSecurity
	}

	path, err := models.ParseObjectPath(req.Path)
	if err != nil {
		return nil, domain.ErrRowLevelSecurity
	}
	if path.IsNamespaceRoot() {
		return nil, fmt.Errorf("%w: object path must name a file inside the owner folder", domain.ErrValidation)
	}

	if err := s.policy.Check(&models.UploadRequest{
		Path:     path,
		Size:     req.Size,
		MimeType: req.MimeType,
	}); err != nil {
		s.logger.Debug("upload rejected by bucket policy", "actor", actor, "path", req.Path, "error", err)
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = path.Name()
	}

	now := time.Now().UTC()
	record := &models.FileRecord{
		OwnerID:    actor,
		Name:       name,
		Size:       req.Size,
		MimeType:   req.MimeType,
		ObjectPath: path.String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := validateRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if s.records.AuthorizeInsert(actor, record) == services.Deny {
		s.denied(actor, "insert", req.Path)
		return nil, domain.ErrRowLevelSecurity
	}

	stored := false
	err = s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		// Holds the unique object_path slot until the blob is written
		if err := s.repo.Create(txCtx, record); err != nil {
			return err
		}

		body := newSizedReader(req.Body, req.Size)
		if _, err := s.objects.Put(txCtx, path, body, req.Size, req.MimeType); err != nil {
			if body.err != nil {
				return body.err
			}
			return err
		}
		if body.err != nil {
			return body.err
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			// Commit failed after the blob landed
			if delErr := s.objects.Delete(context.WithoutCancel(ctx), path); delErr != nil {
				s.logger.Error("failed to remove orphaned blob", "path", path.String(), "error", delErr)
			}
		}
		return nil, err
	}

	s.logger.Info("object uploaded",
		"id", record.ID,
		"object_path", record.ObjectPath,
		"size", record.Size,
		"owner_id", actor,
	)
	return record, nil
}

// DownloadObject opens a blob the actor owns
func (s *fileService) DownloadObject(ctx context.Context, actor models.ActorID, rawPath string) (io.ReadCloser, *models.ObjectInfo, error) {
	if s.blobs.AuthorizeRead(actor, rawPath) == services.Deny {
		s.denied(actor, "read", rawPath)
		return nil, nil, domain.ErrNotFound
	}

	path, err := models.ParseObjectPath(rawPath)
	if err != nil {
		return nil, nil, domain.ErrNotFound
	}

	record, err := s.repo.GetByObjectPath(ctx, path.String())
	switch {
	case err == nil:
		if record.OwnerID != path.Owner() {
			s.logger.Error("record and blob disagree on owner",
				"id", record.ID,
				"record_owner", record.OwnerID,
				"path", path.String(),
			)
			return nil, nil, domain.ErrNotFound
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, nil, err
	}

	rc, info, err := s.objects.Get(ctx, path)
	if err != nil {
		return nil, nil, normalizeNotFound(err)
	}
	return rc, info, nil
}

// DeleteObject removes a blob the actor owns and the record pointing at it
func (s *fileService) DeleteObject(ctx context.Context, actor models.ActorID, rawPath string) error {
	if s.blobs.AuthorizeDelete(actor, rawPath) == services.Deny {
		s.denied(actor, "delete", rawPath)
		return domain.ErrNotFound
	}

	path, err := models.ParseObjectPath(rawPath)
	if err != nil {
		return domain.ErrNotFound
	}

	err = s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetByObjectPath(txCtx, path.String())
		switch {
		case err == nil:
			if s.records.AuthorizeDelete(actor, record) == services.Deny {
				s.logger.Error("record and blob disagree on owner",
					"id", record.ID,
					"record_owner", record.OwnerID,
					"path", path.String(),
				)
				return domain.ErrNotFound
			}
			if err := s.repo.Delete(txCtx, record.ID); err != nil {
				return normalizeNotFound(err)
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	// After commit; deleting a missing blob succeeds, so retries are safe
	if err := s.objects.Delete(ctx, path); err != nil {
		return err
	}

	s.logger.Info("object deleted", "object_path", path.String(), "owner_id", actor)
	return nil
}

// deleteBlobOf removes the blob behind a record the actor is deleting.
// A record whose path lies outside the actor's namespace keeps its blob.
func (s *fileService) deleteBlobOf(ctx context.Context, actor models.ActorID, record *models.FileRecord) error {
	if s.blobs.AuthorizeDelete(actor, record.ObjectPath) == services.Deny {
		s.logger.Error("record and blob disagree on owner; blob left in place",
			"id", record.ID,
			"record_owner", record.OwnerID,
			"path", record.ObjectPath,
		)
		return nil
	}

	path, err := models.ParseObjectPath(record.ObjectPath)
	if err != nil {
		return nil
	}
	return s.objects.Delete(ctx, path)
}

func (s *fileService) denied(actor models.ActorID, op, target string) {
	s.logger.Debug("access denied", "actor", actor, "operation", op, "target", target)
}

// normalizeNotFound collapses every not-found variant to the bare sentinel
// so a denial and a missing row produce identical errors.
func normalizeNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// isRecordID reports whether id could name a row at all
func isRecordID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validateCreateRequest(req *services.CreateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&req.Size, validation.Min(int64(0))),
		validation.Field(&req.MimeType, validation.Required, validation.Length(1, config.MaxMimeTypeLength)),
		validation.Field(&req.ObjectPath, validation.Required, validation.Length(1, config.MaxObjectPathLength)),
	)
}

func validateRecord(record *models.FileRecord) error {
	return validation.ValidateStruct(record,
		validation.Field(&record.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&record.ObjectPath, validation.Required, validation.Length(1, config.MaxObjectPathLength)),
		validation.Field(&record.MimeType, validation.Length(0, config.MaxMimeTypeLength)),
	)
}

func validatePatch(patch *models.FilePatch) error {
	if patch == nil {
		return nil
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxFileNameLength)); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if patch.MimeType != nil {
		if err := validation.Validate(*patch.MimeType, validation.Required, validation.Length(1, config.MaxMimeTypeLength)); err != nil {
			return fmt.Errorf("mime_type: %w", err)
		}
	}
	return nil
}
