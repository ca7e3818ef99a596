package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	// Unknown usernames and password mismatches both map to this error so callers
	// cannot tell which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned when a request field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// User represents a registered account in the system.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Normalized login username (trimmed, lowercased)
	PasswordHash []byte // Hashed password, never exposed outside the auth service
	CreatedAt    int64  // Unix timestamp of account creation
}

// PublicUser is the projection of a User that is safe to return to clients.
// It never carries the password hash.
type PublicUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"createdAt"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
