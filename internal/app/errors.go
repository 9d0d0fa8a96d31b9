package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a missing or empty required field. It is
	// detected before any store call, so failed requests have no side
	// effects.
	ErrValidation = errors.New("invalid input")
	// ErrNoBlobStore indicates that image upload was requested but no blob
	// store is configured.
	ErrNoBlobStore = errors.New("blob store not configured")
)

func missingField(name string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, name)
}
