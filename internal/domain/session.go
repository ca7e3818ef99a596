package domain

import "errors"

var (
	// ErrNoSession is returned when a session token is required but not provided.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession is returned for any unusable session token: malformed,
	// bad signature or expired. The reasons are deliberately not distinguished.
	ErrInvalidSession = errors.New("invalid session")
	// ErrMissingSecret is returned when no session signing secret is configured.
	// The service must refuse to start rather than issue unsigned sessions.
	ErrMissingSecret = errors.New("missing session signing secret")
)
