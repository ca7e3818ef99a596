package scoresvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/svc/scoresvc"
)

// mockScoreRepository implements score.Repository for testing.
type mockScoreRepository struct {
	scores []domain.Score
	err    error
}

func (m *mockScoreRepository) Insert(_ context.Context, score *domain.Score) error {
	if m.err != nil {
		return m.err
	}

	score.ID = int64(len(m.scores) + 1)
	score.CreatedAt = time.Now().UnixMilli()
	m.scores = append(m.scores, *score)

	return nil
}

func (m *mockScoreRepository) LatestByUsername(_ context.Context, username string) (*domain.Score, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}

	for i := len(m.scores) - 1; i >= 0; i-- {
		if m.scores[i].Username == username {
			return &m.scores[i], true, nil
		}
	}

	return nil, false, nil
}

func (m *mockScoreRepository) TopByWPM(_ context.Context, limit int) ([]domain.Score, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.scores) > limit {
		return m.scores[:limit], nil
	}

	return m.scores, nil
}

func setupTestService(repo *mockScoreRepository) *scoresvc.ScoreService {
	return scoresvc.NewScoreService(repo, scoresvc.ScoreConfig{
		Cooldown:         5,
		LeaderboardLimit: 50,
	})
}

func TestScoreService_Submit(t *testing.T) {
	t.Parallel()

	accuracy := 96.5
	tooHigh := 101.0

	tests := []struct {
		name      string
		wpm       float64
		accuracy  *float64
		passageID string
		wantErr   error
	}{
		{
			name:      "valid submission",
			wpm:       80,
			passageID: "classic-fox",
		},
		{
			name:      "valid submission with accuracy",
			wpm:       80,
			accuracy:  &accuracy,
			passageID: "classic-fox",
		},
		{
			name:      "zero wpm",
			wpm:       0,
			passageID: "classic-fox",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "negative wpm",
			wpm:       -10,
			passageID: "classic-fox",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:    "missing passage id",
			wpm:     80,
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:      "accuracy out of range",
			wpm:       80,
			accuracy:  &tooHigh,
			passageID: "classic-fox",
			wantErr:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockScoreRepository{}
			svc := setupTestService(repo)

			err := svc.Submit(context.Background(), "alice", tt.wpm, tt.accuracy, tt.passageID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.scores, "rejected submission must not be stored")

				return
			}

			require.NoError(t, err)
			require.Len(t, repo.scores, 1)
			assert.Equal(t, "alice", repo.scores[0].Username)
			assert.NotZero(t, repo.scores[0].CreatedAt)
		})
	}
}

func TestScoreService_Submit_Cooldown(t *testing.T) {
	t.Parallel()

	repo := &mockScoreRepository{}
	svc := setupTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Submit(ctx, "alice", 80, nil, "classic-fox"))

	// Immediate resubmission hits the cooldown and stores nothing.
	err := svc.Submit(ctx, "alice", 85, nil, "classic-fox")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Len(t, repo.scores, 1)

	// A different user is not throttled by alice's submission.
	require.NoError(t, svc.Submit(ctx, "bob", 70, nil, "classic-fox"))

	// Once the last accepted submission ages past the cooldown, the next
	// one is accepted again.
	repo.scores[0].CreatedAt = time.Now().Add(-6 * time.Second).UnixMilli()
	require.NoError(t, svc.Submit(ctx, "alice", 85, nil, "classic-fox"))
	assert.Len(t, repo.scores, 3)
}

func TestScoreService_TopScores_Limit(t *testing.T) {
	t.Parallel()

	repo := &mockScoreRepository{}
	svc := scoresvc.NewScoreService(repo, scoresvc.ScoreConfig{
		Cooldown:         0,
		LeaderboardLimit: 2,
	})
	ctx := context.Background()

	require.NoError(t, svc.Submit(ctx, "a", 40, nil, "p"))
	require.NoError(t, svc.Submit(ctx, "b", 90, nil, "p"))
	require.NoError(t, svc.Submit(ctx, "c", 60, nil, "p"))

	scores, err := svc.TopScores(ctx)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}
