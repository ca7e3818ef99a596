package scoresvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
	"github.com/mkrupp/typetrial/internal/session"
)

// HTTPTransport handles HTTP requests for score submission and the leaderboard.
type HTTPTransport struct {
	scoreSvc *ScoreService
	verifier http_.SessionVerifier
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance. The verifier is
// used to resolve the acting user from the session; the submission body
// never names its own submitter.
func NewHTTPTransport(scoreSvc *ScoreService, verifier http_.SessionVerifier) *HTTPTransport {
	return &HTTPTransport{
		scoreSvc: scoreSvc,
		verifier: verifier,
		log:      logging.GetLogger("svc.scoresvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up routes for the score endpoints:
// - POST /scores: Submit a score (session cookie or bearer token required)
// - GET  /scores: Public leaderboard.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scores", ht.HandleSubmit)
	mux.HandleFunc("GET /scores", ht.HandleLeaderboard)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

type submitRequest struct {
	WPM       float64  `json:"wpm"`
	Accuracy  *float64 `json:"accuracy"`
	PassageID string   `json:"passageId"`
}

// HandleSubmit processes score submissions. The session travels either in
// the session cookie or in an Authorization header with Bearer scheme.
func (ht *HTTPTransport) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSubmit(w, r)
}

func (ht *HTTPTransport) handleSubmit(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "score submit failed", "error", err)
		} else {
			log.DebugContext(ctx, "score submitted")
		}
	}(r.Context())

	token := sessionToken(r)
	if token == "" {
		http_.WriteError(w, http.StatusUnauthorized, "missing session")

		return domain.ErrNoSession
	}

	username, err := ht.verifier.Verify(token)
	if err != nil {
		// One generic message for malformed, forged and expired tokens.
		http_.WriteError(w, http.StatusUnauthorized, "invalid session")

		return fmt.Errorf("verify session: %w", err)
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid body")

		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}

	if err := ht.scoreSvc.Submit(r.Context(), username, req.WPM, req.Accuracy, req.PassageID); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			http_.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrRateLimited):
			http_.WriteError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error())
		default:
			http_.WriteError(w, http.StatusInternalServerError, "server error")
		}

		return fmt.Errorf("submit score: %w", err)
	}

	http_.WriteOK(w)

	return nil
}

type leaderboardResponse struct {
	OK     bool           `json:"ok"`
	Scores []domain.Score `json:"scores"`
}

// HandleLeaderboard serves the public leaderboard.
func (ht *HTTPTransport) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLeaderboard(w, r)
}

func (ht *HTTPTransport) handleLeaderboard(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "leaderboard query failed", "error", err)
		}
	}(r.Context())

	scores, err := ht.scoreSvc.TopScores(r.Context())
	if err != nil {
		http_.WriteError(w, http.StatusInternalServerError, "server error")

		return fmt.Errorf("top scores: %w", err)
	}

	http_.WriteJSON(w, http.StatusOK, leaderboardResponse{OK: true, Scores: scores})

	return nil
}

// sessionToken extracts the session token from the Authorization header
// or, failing that, from the session cookie. Only a header carrying the
// Bearer scheme diverts from the cookie; anything else is ignored.
func sessionToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	if cookie, err := r.Cookie(session.CookieName); err == nil {
		return cookie.Value
	}

	return ""
}
