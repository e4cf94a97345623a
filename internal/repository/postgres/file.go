package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFileRepository implements repositories.FileRepository
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const fileColumns = `id, owner_id, name, size, mime_type, object_path, created_at, updated_at`

// Create inserts a file record
func (r *PostgresFileRepository) Create(ctx context.Context, record *models.FileRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, size, mime_type, object_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		record.OwnerID,
		record.Name,
		record.Size,
		record.MimeType,
		record.ObjectPath,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			// The failed insert aborted any surrounding transaction, so look up on the pool
			existingID, queryErr := r.getExistingFileID(ctx, record.ObjectPath)
			return objectPathConflict(record.ObjectPath, existingID, queryErr)
		}
		if IsPgCheckViolation(err) || IsPgInvalidTextRepresentation(err) {
			return fmt.Errorf("create file: %w: %v", domain.ErrValidation, err)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file record by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a file record and locks it for the rest of the transaction
func (r *PostgresFileRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.FileRecord, error) {
	if !repositories.InTx(ctx) {
		return nil, fmt.Errorf("get file for update: row lock requires a transaction")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, fileColumns, r.tables.Files)
	return r.getOne(ctx, query, id)
}

// GetByObjectPath retrieves the record for a blob path
func (r *PostgresFileRepository) GetByObjectPath(ctx context.Context, objectPath string) (*models.FileRecord, error) {
	lock := ""
	if repositories.InTx(ctx) {
		lock = " FOR UPDATE"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE object_path = $1%s`, fileColumns, r.tables.Files, lock)
	return r.getOne(ctx, query, objectPath)
}

// ListByOwner retrieves all records owned by an actor, newest first
func (r *PostgresFileRepository) ListByOwner(ctx context.Context, owner models.ActorID) ([]models.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, owner)
	if err != nil {
		if IsPgInvalidTextRepresentation(err) {
			return []models.FileRecord{}, nil
		}
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.FileRecord{}
	for rows.Next() {
		record, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// Update persists name, mime type and updated_at. owner_id and object_path are never written.
func (r *PostgresFileRepository) Update(ctx context.Context, record *models.FileRecord) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, mime_type = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		record.Name,
		record.MimeType,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if IsPgInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// getExistingFileID returns the id of the committed record at objectPath
func (r *PostgresFileRepository) getExistingFileID(ctx context.Context, objectPath string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE object_path = $1`, r.tables.Files)

	var id string
	if err := r.pool.QueryRow(ctx, query, objectPath).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// objectPathConflict builds the error for a unique violation on object_path.
// Without the existing id it falls back to a plain ErrConflict.
func objectPathConflict(objectPath, existingID string, lookupErr error) error {
	if lookupErr != nil || existingID == "" {
		return fmt.Errorf("object '%s' already exists: %w", objectPath, domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("object '%s' already exists", objectPath),
		ResourceType: "file",
		ResourceID:   existingID,
	}
}

func (r *PostgresFileRepository) getOne(ctx context.Context, query string, arg string) (*models.FileRecord, error) {
	executor := GetExecutor(ctx, r.pool)
	record, err := scanFile(executor.QueryRow(ctx, query, arg))
	if err != nil {
		// A malformed uuid cannot match any row
		if IsPgNoRowsError(err) || IsPgInvalidTextRepresentation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return record, nil
}

func scanFile(row pgx.Row) (*models.FileRecord, error) {
	var record models.FileRecord
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Name,
		&record.Size,
		&record.MimeType,
		&record.ObjectPath,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
