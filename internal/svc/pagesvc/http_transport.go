package pagesvc

import (
	"context"
	"embed"
	"net/http"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
)

//go:embed static
var staticFS embed.FS

// Pinger is the slice of the store needed by the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPTransport serves the practice and login pages, the static passage
// catalog and the health endpoint. Everything here is display logic or
// pass-through; the access gate decides who gets the pages.
type HTTPTransport struct {
	store Pinger
	log   logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(store Pinger) *HTTPTransport {
	return &HTTPTransport{
		store: store,
		log:   logging.GetLogger("svc.pagesvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up the page and catalog routes:
// - GET /: Practice page
// - GET /auth: Login and registration page
// - GET /api/passages: Full passage catalog
// - GET /api/passages/random: One passage, optionally excluding the previous one
// - GET /health: Liveness plus a store ping.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", ht.HandleIndex)
	mux.HandleFunc("GET /auth", ht.HandleAuthPage)
	mux.HandleFunc("GET /api/passages", ht.HandlePassages)
	mux.HandleFunc("GET /api/passages/random", ht.HandleRandomPassage)
	mux.HandleFunc("GET /health", ht.HandleHealth)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleIndex serves the practice page.
func (ht *HTTPTransport) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ht.servePage(w, r, "static/index.html")
}

// HandleAuthPage serves the login and registration page.
func (ht *HTTPTransport) HandleAuthPage(w http.ResponseWriter, r *http.Request) {
	ht.servePage(w, r, "static/auth.html")
}

func (ht *HTTPTransport) servePage(w http.ResponseWriter, r *http.Request, name string) {
	page, err := staticFS.ReadFile(name)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "read page failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

type passagesResponse struct {
	OK       bool             `json:"ok"`
	Passages []domain.Passage `json:"passages"`
}

// HandlePassages returns the full passage catalog.
func (ht *HTTPTransport) HandlePassages(w http.ResponseWriter, _ *http.Request) {
	http_.WriteJSON(w, http.StatusOK, passagesResponse{OK: true, Passages: Passages()})
}

type passageResponse struct {
	OK      bool           `json:"ok"`
	Passage domain.Passage `json:"passage"`
}

// HandleRandomPassage returns one random passage. The optional exclude
// query parameter names the previously served passage id.
func (ht *HTTPTransport) HandleRandomPassage(w http.ResponseWriter, r *http.Request) {
	passage := RandomPassage(r.URL.Query().Get("exclude"))
	http_.WriteJSON(w, http.StatusOK, passageResponse{OK: true, Passage: passage})
}

type healthResponse struct {
	OK bool   `json:"ok"`
	DB string `json:"db"`
}

// HandleHealth reports liveness and the store's reachability.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := ht.store.PingContext(r.Context()); err != nil {
		ht.log.ErrorContext(r.Context(), "store ping failed", "error", err)
		dbStatus = "unreachable"
	}

	http_.WriteJSON(w, http.StatusOK, healthResponse{OK: true, DB: dbStatus})
}
