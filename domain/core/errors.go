package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSnapshotNotFound = fmt.Errorf("%w: market snapshot", ErrNotFound)

	// Validation errors
	ErrEmptyUpload   = errors.New("image upload is empty")
	ErrMissingRegion = errors.New("region is required")

	// Concurrency errors
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
