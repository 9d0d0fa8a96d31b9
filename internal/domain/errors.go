package domain

import "errors"

// Sentinel errors shared by the store adapters. Handlers translate these
// into stable response codes, so adapters must return them rather than raw
// driver errors.
var (
	// ErrNotFound indicates that no row matched the given id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCheckIn indicates a second mood check-in on the same
	// local calendar day for the same user.
	ErrDuplicateCheckIn = errors.New("already checked in today")
	// ErrDuplicateEmail indicates that the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
