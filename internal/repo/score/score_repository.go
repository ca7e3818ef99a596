package score

import (
	"context"

	"github.com/mkrupp/typetrial/internal/domain"
)

// Repository defines the interface for score persistence. Scores are
// append-only; nothing updates or deletes them.
type Repository interface {
	// Insert persists a score. CreatedAt is assigned by the store from
	// server time, never taken from the caller.
	Insert(ctx context.Context, score *domain.Score) error

	// LatestByUsername retrieves the most recent score submitted by the
	// given user. Returns the score and true if one exists, or nil and
	// false if the user has never submitted.
	LatestByUsername(ctx context.Context, username string) (*domain.Score, bool, error)

	// TopByWPM returns up to limit scores ordered by wpm descending,
	// ties broken by insertion order.
	TopByWPM(ctx context.Context, limit int) ([]domain.Score, error)
}
