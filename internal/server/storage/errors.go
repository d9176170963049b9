package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with the same
	// (provider, external id) pair already exists
	ErrUserAlreadyExists = errors.New("user already exists")
)
