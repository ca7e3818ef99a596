package context

// contextKey is a private type for context value keys so they cannot collide
// with keys defined in other packages.
type contextKey string
