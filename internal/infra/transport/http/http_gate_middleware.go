package http

import (
	"net/http"
	"net/url"
	"strings"

	context_ "github.com/mkrupp/typetrial/internal/infra/context"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	"github.com/mkrupp/typetrial/internal/session"
)

// LoginPath is the page unauthenticated requests are redirected to.
const LoginPath = "/auth"

// Gate policy names; see GateConfig.Mode.
const (
	GateModeStrict        = "strict"
	GateModeLoginPageOnly = "login-page-only"
)

// GateConfig contains configuration parameters for the access gate.
type GateConfig struct {
	// Mode selects the gate policy:
	//   - "strict": every page requires a valid session; requests without
	//     one are redirected to the login page with the original path
	//     attached. Asset paths, the login page and API routes pass freely.
	//   - "login-page-only": only authenticated users visiting the login
	//     page are redirected away from it; all other routes pass and each
	//     API route enforces its own session requirement.
	Mode string `env:"GATE_MODE" default:"strict"`
}

// SessionVerifier checks a session token and returns the asserted username.
type SessionVerifier interface {
	Verify(token string) (string, error)
}

// GateMiddleware creates middleware that decides, before any route-specific
// logic, whether a request may proceed without a valid session. When the
// request does carry a valid session, the username is added to the request
// context regardless of policy.
func GateMiddleware(
	next http.Handler,
	verifier SessionVerifier,
	cfg GateConfig,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, authenticated := sessionUser(r, verifier)

		switch cfg.Mode {
		case GateModeLoginPageOnly:
			if r.URL.Path == LoginPath && authenticated {
				http.Redirect(w, r, nextTarget(r.URL.Query().Get("next")), http.StatusFound)

				return
			}
		default: // strict
			if !isPublicPath(r.URL.Path) && !authenticated {
				log.DebugContext(r.Context(), "gate redirect", "path", r.URL.Path)
				http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(r.URL.Path), http.StatusFound)

				return
			}
		}

		if authenticated {
			r = r.WithContext(context_.WithUsername(r.Context(), username))
		}

		next.ServeHTTP(w, r)
	})
}

// nextTarget sanitizes the post-login redirect target. Only same-origin
// paths are honored; absolute and protocol-relative URLs would make the
// login page an open redirect.
func nextTarget(target string) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "/\\") ||
		target == LoginPath {
		return "/"
	}

	return target
}

func sessionUser(r *http.Request, verifier SessionVerifier) (string, bool) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	username, err := verifier.Verify(cookie.Value)
	if err != nil {
		return "", false
	}

	return username, true
}

// isPublicPath reports whether a path is reachable without a session under
// the strict policy. The login page and auth API must pass to avoid a
// redirect loop; API routes enforce their own session requirements so that
// bearer-token clients are not bounced to an HTML page.
func isPublicPath(path string) bool {
	if path == LoginPath {
		return true
	}

	for _, prefix := range []string{
		LoginPath + "/",
		"/scores",
		"/api/",
		"/health",
		"/static/",
		"/favicon",
	} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
