package postgres

import (
	"errors"
	"testing"

	"filevault/internal/domain"

	"github.com/jackc/pgx/v5"
)

func TestObjectPathConflict(t *testing.T) {
	t.Run("existing id found", func(t *testing.T) {
		err := objectPathConflict("u1/a.txt", "0f8fad5b-d9cb-469f-a165-70867728950e", nil)

		var conflictErr *domain.ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("expected *ConflictError, got %T: %v", err, err)
		}
		if conflictErr.ResourceID != "0f8fad5b-d9cb-469f-a165-70867728950e" {
			t.Errorf("ResourceID = %q", conflictErr.ResourceID)
		}
		if conflictErr.ResourceType != "file" {
			t.Errorf("ResourceType = %q", conflictErr.ResourceType)
		}
		if !errors.Is(err, domain.ErrConflict) {
			t.Error("expected errors.Is(err, ErrConflict)")
		}
	})

	t.Run("lookup failed", func(t *testing.T) {
		err := objectPathConflict("u1/a.txt", "", pgx.ErrNoRows)

		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			t.Errorf("fallback should not carry a ConflictError: %+v", conflictErr)
		}
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		if err := objectPathConflict("u1/a.txt", "", nil); !errors.Is(err, domain.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})
}
