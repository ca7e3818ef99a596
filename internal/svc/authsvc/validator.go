package authsvc

import (
	"fmt"
	"strings"

	"github.com/mkrupp/typetrial/internal/domain"
)

// Credential length constraints, applied after normalization.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// NormalizeUsername trims whitespace and lowercases a username so that case
// and whitespace variants of the same name collide. All lookups and storage
// operate on the normalized form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateCredentials checks the length constraints on a normalized
// username and a password. Returns an error wrapping domain.ErrInvalidInput
// naming the offending field.
func ValidateCredentials(username, password string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters",
			domain.ErrInvalidInput, MinUsernameLength)
	}

	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidInput, MinPasswordLength)
	}

	return nil
}
