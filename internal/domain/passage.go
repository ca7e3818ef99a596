package domain

// Passage is an entry in the static catalog of practice texts.
type Passage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
