package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"quill/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == "23505" // unique_violation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return pgCode(err) == "23503" // foreign_key_violation
}

// IsPgCheckViolation checks if error is a CHECK constraint violation
func IsPgCheckViolation(err error) bool {
	return pgCode(err) == "23514" // check_violation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// StoreErr classifies a failed query. No rows becomes domain.ErrNotFound,
// constraint violations become validation errors and everything else is a
// domain.StoreError tagged with op.
func StoreErr(op, what string, err error) error {
	switch {
	case IsPgNoRowsError(err):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case IsPgForeignKeyError(err), IsPgCheckViolation(err):
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, op, err)
	default:
		return &domain.StoreError{Op: op, Err: err}
	}
}
