package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/typetrial/internal/domain"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
	scorerepo "github.com/mkrupp/typetrial/internal/repo/score"
	"github.com/mkrupp/typetrial/internal/repo/store"
	userrepo "github.com/mkrupp/typetrial/internal/repo/user"
	"github.com/mkrupp/typetrial/internal/session"
	"github.com/mkrupp/typetrial/internal/svc/authsvc"
	"github.com/mkrupp/typetrial/internal/svc/scoresvc"
)

// newTestHandler wires the full service stack against a temporary
// database, the same way run does.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	db, err := store.Open(store.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
		QueryTimeout: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo, err := userrepo.NewSQLiteUserRepository(db, store.Config{QueryTimeout: 3}.Timeout())
	require.NoError(t, err)

	scoreRepo, err := scorerepo.NewSQLiteScoreRepository(db, store.Config{QueryTimeout: 3}.Timeout())
	require.NoError(t, err)

	sessions, err := session.NewCodec(session.Config{Secret: "test-secret", TokenDuration: 7200})
	require.NoError(t, err)

	authSvc := authsvc.NewAuthService(userRepo, sessions, authsvc.AuthConfig{})
	scoreSvc := scoresvc.NewScoreService(scoreRepo, scoresvc.ScoreConfig{
		Cooldown:         5,
		LeaderboardLimit: 50,
	})

	return newHandler(authSvc, scoreSvc, sessions, db, http_.GateConfig{
		Mode: http_.GateModeStrict,
	})
}

// The login page must answer directly on /auth. A subtree-only
// registration would make ServeMux redirect GET /auth to /auth/ and
// then serve a 404 from the API transport.
func TestHandler_LoginPageReachable(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/auth?next=%2F", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "sign in")
}

func TestHandler_GateRedirectsAnonymous(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?next=%2F", w.Header().Get("Location"))
}

// Full walk through the wired handler: register, submit, get throttled
// on an immediate resubmission, and read back a single leaderboard row.
func TestHandler_RegisterSubmitLeaderboard(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"Alice","password":"secret1"}`))
	r.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	require.NotNil(t, cookie, "register must set a session cookie")

	submit := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(body))
		r.AddCookie(cookie)
		handler.ServeHTTP(w, r)

		return w
	}

	w = submit(`{"wpm":80,"passageId":"classic-fox"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = submit(`{"wpm":85,"passageId":"classic-fox"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/scores", nil)
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK     bool           `json:"ok"`
		Scores []domain.Score `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.True(t, resp.OK)
	require.Len(t, resp.Scores, 1)
	assert.Equal(t, "alice", resp.Scores[0].Username)
	assert.InDelta(t, 80, resp.Scores[0].WPM, 0.001)
}
