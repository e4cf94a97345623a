package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorHelpers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("query: %w", &pgconn.PgError{Code: code})
	}

	if !IsPgDuplicateError(wrap("23505")) {
		t.Error("23505 should be a duplicate error")
	}
	if !IsPgCheckViolation(wrap("23514")) {
		t.Error("23514 should be a check violation")
	}
	if !IsPgInvalidTextRepresentation(wrap("22P02")) {
		t.Error("22P02 should be an invalid text representation")
	}
	if !IsPgNoRowsError(fmt.Errorf("scan: %w", pgx.ErrNoRows)) {
		t.Error("wrapped ErrNoRows should be detected")
	}

	plain := errors.New("connection refused")
	if IsPgDuplicateError(plain) || IsPgCheckViolation(plain) || IsPgInvalidTextRepresentation(plain) || IsPgNoRowsError(plain) {
		t.Error("non-postgres error matched a helper")
	}
}
