package scoresvc

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
	"github.com/mkrupp/typetrial/internal/repo/score"
)

// ScoreConfig contains configuration parameters for the score service.
type ScoreConfig struct {
	// Cooldown is the per-user sliding cooldown between accepted
	// submissions, in seconds. The clock restarts from the last accepted
	// submission, not from a calendar boundary.
	Cooldown int64 `env:"SCORE_COOLDOWN" default:"5"`

	// LeaderboardLimit is the fixed top-N window of the leaderboard
	LeaderboardLimit int `env:"LEADERBOARD_LIMIT" default:"50"`
}

// ScoreService validates and persists score submissions and serves the
// leaderboard.
type ScoreService struct {
	Config    ScoreConfig
	ScoreRepo score.Repository
	Log       logging.Logger
}

// NewScoreService creates a new ScoreService over the given score repository.
func NewScoreService(scoreRepo score.Repository, cfg ScoreConfig) *ScoreService {
	return &ScoreService{
		Config:    cfg,
		ScoreRepo: scoreRepo,
		Log:       logging.GetLogger("svc.scoresvc.score_service"),
	}
}

func (s *ScoreService) cooldown() time.Duration {
	return time.Duration(s.Config.Cooldown * int64(time.Second))
}

// Submit validates and persists a score for the given user. The username
// comes from the caller's verified session, never from the submission
// itself. A submission within the cooldown window of the user's last
// accepted score is rejected with domain.ErrRateLimited.
//
// The recency check and the insert are not serialized against each other;
// two concurrent submissions from one user can both pass the check. That
// admits at most one extra row and both rows are individually valid.
func (s *ScoreService) Submit(
	ctx context.Context,
	username string,
	wpm float64,
	accuracy *float64,
	passageID string,
) (err error) {
	log := s.Log.With(logging.Group("score",
		"username", username,
		"wpm", wpm,
		"passage_id", passageID,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "submit score failed", "error", err)
		} else {
			log.DebugContext(ctx, "score submitted")
		}
	}()

	if wpm <= 0 {
		return fmt.Errorf("%w: wpm must be positive", domain.ErrInvalidInput)
	}

	if passageID == "" {
		return fmt.Errorf("%w: missing passage id", domain.ErrInvalidInput)
	}

	if accuracy != nil && (*accuracy < 0 || *accuracy > 100) {
		return fmt.Errorf("%w: accuracy must be between 0 and 100", domain.ErrInvalidInput)
	}

	latest, ok, err := s.ScoreRepo.LatestByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get latest score: %w", err)
	}

	if ok && time.Since(time.UnixMilli(latest.CreatedAt)) < s.cooldown() {
		return domain.ErrRateLimited
	}

	if err := s.ScoreRepo.Insert(ctx, &domain.Score{
		Username:  username,
		WPM:       wpm,
		Accuracy:  accuracy,
		PassageID: passageID,
	}); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}

	return nil
}

// TopScores returns the leaderboard: up to LeaderboardLimit scores ordered
// by wpm descending, ties in insertion order. Read-only and public.
func (s *ScoreService) TopScores(ctx context.Context) ([]domain.Score, error) {
	scores, err := s.ScoreRepo.TopByWPM(ctx, s.Config.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}

	return scores, nil
}
