package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mkrupp/typetrial/internal/domain"
	context_ "github.com/mkrupp/typetrial/internal/infra/context"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
	"github.com/mkrupp/typetrial/internal/session"
)

// staticVerifier accepts exactly one token.
type staticVerifier struct {
	token    string
	username string
}

func (v staticVerifier) Verify(token string) (string, error) {
	if token == v.token {
		return v.username, nil
	}

	return "", domain.ErrInvalidSession
}

func gateRequest(t *testing.T, mode, path, token string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUsername string

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername, _ = context_.UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	gate := http_.GateMiddleware(next, staticVerifier{token: "good", username: "alice"},
		http_.GateConfig{Mode: mode}, logging.NewNopLogger())

	r := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	w := httptest.NewRecorder()
	gate.ServeHTTP(w, r)

	return w, gotUsername
}

func TestGateMiddleware_Strict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
		wantUsername string
	}{
		{
			name:         "page without session redirects to login",
			path:         "/",
			wantStatus:   http.StatusFound,
			wantLocation: "/auth?next=%2F",
		},
		{
			name:         "page with invalid session redirects to login",
			path:         "/",
			token:        "bad",
			wantStatus:   http.StatusFound,
			wantLocation: "/auth?next=%2F",
		},
		{
			name:         "page with valid session passes",
			path:         "/",
			token:        "good",
			wantStatus:   http.StatusOK,
			wantUsername: "alice",
		},
		{
			name:       "login page passes without session",
			path:       "/auth",
			wantStatus: http.StatusOK,
		},
		{
			name:       "auth api passes without session",
			path:       "/auth/login",
			wantStatus: http.StatusOK,
		},
		{
			name:       "scores api passes without session",
			path:       "/scores",
			wantStatus: http.StatusOK,
		},
		{
			name:       "health passes without session",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, gotUsername := gateRequest(t, http_.GateModeStrict, tt.path, tt.token)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
			if gotUsername != tt.wantUsername {
				t.Errorf("context username = %q, want %q", gotUsername, tt.wantUsername)
			}
		})
	}
}

func TestGateMiddleware_LoginPageOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "page without session passes",
			path:       "/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "login page without session passes",
			path:       "/auth",
			wantStatus: http.StatusOK,
		},
		{
			name:         "authenticated user is pushed off the login page",
			path:         "/auth",
			token:        "good",
			wantStatus:   http.StatusFound,
			wantLocation: "/",
		},
		{
			name:         "next target is honored",
			path:         "/auth?next=%2Fpractice",
			token:        "good",
			wantStatus:   http.StatusFound,
			wantLocation: "/practice",
		},
		{
			name:         "absolute next target is not followed",
			path:         "/auth?next=" + url.QueryEscape("https://evil.example/"),
			token:        "good",
			wantStatus:   http.StatusFound,
			wantLocation: "/",
		},
		{
			name:         "protocol-relative next target is not followed",
			path:         "/auth?next=" + url.QueryEscape("//evil.example/"),
			token:        "good",
			wantStatus:   http.StatusFound,
			wantLocation: "/",
		},
		{
			name:         "backslash next target is not followed",
			path:         "/auth?next=" + url.QueryEscape(`/\evil.example`),
			token:        "good",
			wantStatus:   http.StatusFound,
			wantLocation: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, _ := gateRequest(t, http_.GateModeLoginPageOnly, tt.path, tt.token)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}
