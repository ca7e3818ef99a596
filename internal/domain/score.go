package domain

import "errors"

// ErrRateLimited is returned when a user submits a score before their
// cooldown window from the previous accepted submission has elapsed.
var ErrRateLimited = errors.New("please wait before submitting again")

// Score represents a single typing run submitted to the leaderboard.
// Scores are immutable once written.
type Score struct {
	ID        int64    `json:"-"`
	Username  string   `json:"name"`               // Submitter, taken from the session, never from the client
	WPM       float64  `json:"wpm"`                // Words per minute, always positive
	Accuracy  *float64 `json:"accuracy,omitempty"` // Optional percentage, 0-100
	PassageID string   `json:"passageId"`          // Reference into the static passage catalog
	CreatedAt int64    `json:"createdAt"`          // Server-assigned Unix millisecond timestamp
}
