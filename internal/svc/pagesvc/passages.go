package pagesvc

import (
	"math/rand/v2"

	"github.com/mkrupp/typetrial/internal/domain"
)

// passages is the static catalog of practice texts. IDs are referenced by
// submitted scores; entries are never removed.
//
//nolint:gochecknoglobals
var passages = []domain.Passage{
	{ID: "classic-fox", Text: "The quick brown fox jumps over the lazy dog. Practice makes perfect."},
	{ID: "focus-flow", Text: "Focus on accuracy first; speed will grow naturally as your fingers learn the path."},
	{ID: "keyboard-rhythm", Text: "Typing is a rhythm game disguised as productivity. Find a steady cadence and let errors fade."},
	{ID: "consistency", Text: "Consistent deliberate practice compounds. Small daily improvements lead to remarkable speed."},
	{ID: "calm-breath", Text: "Stay calm, breathe evenly, and let muscle memory guide each letter into place."},
}

// Passages returns the full catalog.
func Passages() []domain.Passage {
	return passages
}

// RandomPassage picks a random passage, excluding the given id so that
// consecutive rounds do not repeat the same text. An unknown or empty
// exclude id draws from the whole catalog.
func RandomPassage(excludeID string) domain.Passage {
	filtered := passages

	if excludeID != "" {
		filtered = make([]domain.Passage, 0, len(passages))

		for _, p := range passages {
			if p.ID != excludeID {
				filtered = append(filtered, p)
			}
		}

		if len(filtered) == 0 {
			filtered = passages
		}
	}

	return filtered[rand.IntN(len(filtered))]
}
