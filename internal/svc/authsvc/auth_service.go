package authsvc

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	"github.com/mkrupp/typetrial/internal/repo/user"
	"github.com/mkrupp/typetrial/internal/session"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// CookieSecure marks the session cookie Secure; enable behind TLS
	CookieSecure bool `env:"COOKIE_SECURE" default:"false"`
}

// AuthService provides registration, login and session introspection.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Sessions *session.Codec
	Log      logging.Logger
}

// NewAuthService creates a new AuthService over the given user repository
// and session codec.
func NewAuthService(userRepo user.Repository, sessions *session.Codec, cfg AuthConfig) *AuthService {
	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Sessions: sessions,
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Register creates a new user account and immediately issues a session for
// it; registration implies login. The username is normalized before all
// lookups and storage. The password is hashed before storage and never
// logged. Uniqueness rests on the store's unique constraint, so concurrent
// registrations of the same name cannot both succeed.
// Returns domain.ErrInvalidInput or domain.ErrUserAlreadyExists on rejection.
func (s *AuthService) Register(ctx context.Context, username, password string) (_ string, err error) {
	username = NormalizeUsername(username)
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if err := ValidateCredentials(username, password); err != nil {
		return "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.UserRepo.CreateUser(ctx, username, passwordHash); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.Sessions.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	return token, nil
}

// Login authenticates a user and issues a session token. An unknown
// username and a wrong password return the same domain.ErrInvalidCredentials;
// the bcrypt comparison is constant-time relative to the hash length.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	username = NormalizeUsername(username)
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	usr, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}

		return "", fmt.Errorf("get user: %w", err)
	} else if !ok {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(usr.Username)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	return token, nil
}

// CurrentUser resolves a session token to the user's public view. Any
// verification failure or missing user yields (nil, nil) rather than an
// error; this call backs passive session probing and must never fail on a
// bad or absent token. Only store failures surface as errors.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.PublicUser, error) {
	if token == "" {
		return nil, nil
	}

	username, err := s.Sessions.Verify(token)
	if err != nil {
		return nil, nil
	}

	usr, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, nil
	}

	return usr.Public(), nil
}
