package user

import (
	"context"

	"github.com/mkrupp/typetrial/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository. The username must
	// already be normalized; uniqueness is enforced by the store itself,
	// not by a prior existence check.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, username string, passwordHash []byte) error

	// GetUserByUsername retrieves a user by their normalized username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)
}
