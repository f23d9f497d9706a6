package types

import "time"

// Feedback is a free-text comment left on the landing page.
type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackCreate is the request body of POST /api/feedback.
type FeedbackCreate struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// FeedbackSummary is the projection returned after feedback is stored.
type FeedbackSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment length bounds, in characters, after trimming.
const (
	MinCommentLength = 10
	MaxCommentLength = 1000
)
