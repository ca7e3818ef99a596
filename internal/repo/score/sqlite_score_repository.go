package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkrupp/typetrial/internal/domain"
	"github.com/mkrupp/typetrial/internal/infra/logging"
)

// SQLiteScoreRepository implements Repository using SQLite as the storage backend.
type SQLiteScoreRepository struct {
	db           *sql.DB
	log          logging.Logger
	queryTimeout time.Duration
	writeLock    *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteScoreRepository)(nil)

// NewSQLiteScoreRepository creates a new SQLiteScoreRepository on the given
// database handle and creates the schema if needed.
func NewSQLiteScoreRepository(db *sql.DB, queryTimeout time.Duration) (*SQLiteScoreRepository, error) {
	log := logging.GetLogger("repo.score.sqlite_score_repository")

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scores (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			username   TEXT    NOT NULL,
			wpm        REAL    NOT NULL,
			accuracy   REAL,
			passage_id TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_username_created_at
			ON scores (username, created_at DESC);
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteScoreRepository{
		db:           db,
		log:          log,
		queryTimeout: queryTimeout,
		writeLock:    new(sync.Mutex),
	}, nil
}

// Insert implements Repository.Insert using SQLite. The created_at column
// is set from server time in milliseconds; the stored value is written back
// into the score.
func (r *SQLiteScoreRepository) Insert(ctx context.Context, score *domain.Score) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	score.CreatedAt = time.Now().UnixMilli()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO scores (username, wpm, accuracy, passage_id, created_at) VALUES (?, ?, ?, ?, ?)",
		score.Username,
		score.WPM,
		nullFloat(score.Accuracy),
		score.PassageID,
		score.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		score.ID = id
	}

	return nil
}

// LatestByUsername implements Repository.LatestByUsername using SQLite.
func (r *SQLiteScoreRepository) LatestByUsername(ctx context.Context, username string) (*domain.Score, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, wpm, accuracy, passage_id, created_at
		FROM scores WHERE username = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		username,
	)

	score, err := scanScore(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query latest score: %w", err)
	}

	return score, true, nil
}

// TopByWPM implements Repository.TopByWPM using SQLite. Ordering by the
// autoincrement key keeps ties in insertion order.
func (r *SQLiteScoreRepository) TopByWPM(ctx context.Context, limit int) ([]domain.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, wpm, accuracy, passage_id, created_at
		FROM scores
		ORDER BY wpm DESC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	scores := make([]domain.Score, 0, limit)

	for rows.Next() {
		score, err := scanScore(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}

		scores = append(scores, *score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}

	return scores, nil
}

func scanScore(scan func(dest ...any) error) (*domain.Score, error) {
	var (
		score    domain.Score
		accuracy sql.NullFloat64
	)

	if err := scan(
		&score.ID,
		&score.Username,
		&score.WPM,
		&accuracy,
		&score.PassageID,
		&score.CreatedAt,
	); err != nil {
		return nil, err
	}

	if accuracy.Valid {
		score.Accuracy = &accuracy.Float64
	}

	return &score, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *v, Valid: true}
}
