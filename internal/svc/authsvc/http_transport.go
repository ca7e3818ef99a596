package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
	"github.com/mkrupp/typetrial/internal/session"
)

// HTTPTransport handles HTTP requests for the authentication service.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth service endpoints:
// - POST /auth/register: Register a new user and start a session
// - POST /auth/login: Login and start a session
// - POST /auth/logout: Clear the session cookie
// - GET  /auth/me: Return the current user, or null without a valid session.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", ht.HandleRegister)
	mux.HandleFunc("POST /auth/login", ht.HandleLogin)
	mux.HandleFunc("POST /auth/logout", ht.HandleLogout)
	mux.HandleFunc("GET /auth/me", ht.HandleMe)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return credentialsRequest{}, fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}

	return req, nil
}

// HandleRegister processes user registration requests.
// Expects a JSON body with username and password.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid body")

		return err
	}

	token, err := ht.authSvc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			// Validation messages are composed locally and safe to return.
			http_.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http_.WriteError(w, http.StatusConflict, "username already taken")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "server error")
		}

		return fmt.Errorf("register user: %w", err)
	}

	ht.setSessionCookie(w, token)
	http_.WriteOK(w)

	return nil
}

// HandleLogin processes user login requests.
// Expects a JSON body with username and password.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid body")

		return err
	}

	token, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http_.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		} else {
			http_.WriteError(w, http.StatusInternalServerError, "server error")
		}

		return fmt.Errorf("login user: %w", err)
	}

	ht.setSessionCookie(w, token)
	http_.WriteOK(w)

	return nil
}

// HandleLogout clears the session cookie. Sessions are bearer-style with no
// server-side record, so clearing the cookie is the whole operation.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   ht.authSvc.Config.CookieSecure,
		MaxAge:   -1,
	})
	http_.WriteOK(w)
}

type meResponse struct {
	OK   bool               `json:"ok"`
	User *domain.PublicUser `json:"user"`
}

// HandleMe returns the current user's public view, or null when the request
// carries no usable session. It never fails on a bad or missing cookie.
func (ht *HTTPTransport) HandleMe(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		token = cookie.Value
	}

	usr, err := ht.authSvc.CurrentUser(r.Context(), token)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "current user failed", "error", err)
	}

	http_.WriteJSON(w, http.StatusOK, meResponse{OK: true, User: usr})
}

func (ht *HTTPTransport) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   ht.authSvc.Config.CookieSecure,
		MaxAge:   int(ht.authSvc.Sessions.TTL().Seconds()),
	})
}
