package storage

import (
	"context"

	"github.com/iudanet/socialauth/internal/models"
)

//go:generate moq -out user_mock.go . UserStorage

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if (provider, external id) is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByProviderAndExternalID retrieves user by its federated identity
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByProviderAndExternalID(ctx context.Context, provider, externalID string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateUserRole sets the role of an existing user
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUserRole(ctx context.Context, userID, role string) error

	// Ping checks the connection to the backing database
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
