package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/typetrial/internal/domain"
)

// CookieName is the cookie under which the session token travels.
const CookieName = "token"

// Config contains configuration parameters for the session codec.
type Config struct {
	// Secret is the process-wide signing secret. It has no default: the
	// service refuses to start without it rather than issue unsigned tokens.
	Secret string `env:"SECRET"`

	// TokenDuration is the validity duration of session tokens in seconds
	TokenDuration int64 `env:"TOKEN_DURATION" default:"7200"` // 2h
}

// Codec issues and verifies signed, time-bound session tokens. A token
// asserts a username and is valid iff its HMAC signature verifies under the
// configured secret and it has not expired. Sessions are bearer-style; no
// server-side record exists and expiry is the only termination mechanism.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec from the given configuration.
// Returns domain.ErrMissingSecret if no signing secret is configured.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, domain.ErrMissingSecret
	}

	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.TokenDuration * int64(time.Second)),
	}, nil
}

// TTL returns the configured token validity duration.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed token asserting the given username, expiring
// TTL from now.
func (c *Codec) Issue(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	return signed, nil
}

// Verify checks a token's signature and expiry and returns the asserted
// username. Malformed tokens, bad signatures and expired tokens all yield
// domain.ErrInvalidSession; callers must not be able to tell them apart.
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidSession
	}

	return claims.Subject, nil
}
