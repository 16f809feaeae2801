package service

import (
	"errors"
	"fmt"

	"github.com/issuetracker/backend/internal/repository"
)

// ErrInvalidArgument is returned for input the store must never see, such as
// a blank comment body or an empty title.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrStoreFailure tags errors that came from the persistence layer itself.
// The transaction has already been rolled back when a caller sees it.
var ErrStoreFailure = errors.New("store failure")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// classify passes the domain errors through untouched and wraps anything
// else as ErrStoreFailure, keeping the cause reachable via errors.Is/As.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrStoreFailure):
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
