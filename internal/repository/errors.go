package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when a guarded issue update finds that the
// stored version no longer matches the version the caller last read.
var ErrVersionConflict = errors.New("version conflict")

// ErrDuplicate is returned when an insert violates a unique constraint
// (user email, label name).
var ErrDuplicate = errors.New("duplicate")

const pgUniqueViolation = "23505"

// mapUniqueViolation converts a unique-constraint error into ErrDuplicate and
// passes every other error through.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}
