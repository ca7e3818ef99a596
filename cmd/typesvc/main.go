package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/typetrial/internal/infra/config"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	http_ "github.com/mkrupp/typetrial/internal/infra/transport/http"
	scorerepo "github.com/mkrupp/typetrial/internal/repo/score"
	"github.com/mkrupp/typetrial/internal/repo/store"
	userrepo "github.com/mkrupp/typetrial/internal/repo/user"
	"github.com/mkrupp/typetrial/internal/session"
	"github.com/mkrupp/typetrial/internal/svc/authsvc"
	"github.com/mkrupp/typetrial/internal/svc/pagesvc"
	"github.com/mkrupp/typetrial/internal/svc/scoresvc"
)

const (
	appName = "typetrial"
	svcName = "typesvc"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig      `envPrefix:"LOG_"`
	HTTP    http_.HTTPTransportConfig `envPrefix:"HTTP_"`
	Gate    http_.GateConfig          `envPrefix:"HTTP_"`
	Session session.Config            `envPrefix:"SESSION_"`
	Auth    authsvc.AuthConfig        `envPrefix:"AUTH_"`
	Score   scoresvc.ScoreConfig      `envPrefix:"SCORE_"`
	Store   store.Config              `envPrefix:"STORE_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	// A missing session secret fails here: it has no default, so the
	// process refuses to start instead of serving unsigned sessions.
	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.typesvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	db, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	userRepo, err := userrepo.NewSQLiteUserRepository(db, cfg.Store.Timeout())
	if err != nil {
		return fmt.Errorf("new user repo: %w", err)
	}

	scoreRepo, err := scorerepo.NewSQLiteScoreRepository(db, cfg.Store.Timeout())
	if err != nil {
		return fmt.Errorf("new score repo: %w", err)
	}

	sessions, err := session.NewCodec(cfg.Session)
	if err != nil {
		return fmt.Errorf("new session codec: %w", err)
	}

	authSvc := authsvc.NewAuthService(userRepo, sessions, cfg.Auth)
	scoreSvc := scoresvc.NewScoreService(scoreRepo, cfg.Score)

	handler := newHandler(authSvc, scoreSvc, sessions, db, cfg.Gate)

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// newHandler assembles the route table and wraps it in the access gate.
// The login page is registered as an exact GET route so that the /auth/
// API subtree does not swallow it via the ServeMux trailing-slash redirect.
func newHandler(
	authSvc *authsvc.AuthService,
	scoreSvc *scoresvc.ScoreService,
	sessions *session.Codec,
	db *sql.DB,
	gateCfg http_.GateConfig,
) http.Handler {
	pages := pagesvc.NewHTTPTransport(db)

	mux := http.NewServeMux()
	mux.Handle("/auth/", authsvc.NewHTTPTransport(authSvc))
	mux.Handle("GET /auth", pages)
	mux.Handle("/scores", scoresvc.NewHTTPTransport(scoreSvc, sessions))
	mux.Handle("/", pages)

	return http_.GateMiddleware(mux, sessions, gateCfg, logging.GetLogger("infra.transport.http.gate"))
}
