package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == "23505" // unique_violation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgCheckViolation checks if error is a check constraint violation
func IsPgCheckViolation(err error) bool {
	return pgErrorCode(err) == "23514" // check_violation
}

// IsPgInvalidTextRepresentation reports malformed input such as a bad uuid literal
func IsPgInvalidTextRepresentation(err error) bool {
	return pgErrorCode(err) == "22P02"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
