package model

import "time"

// Query is a single prompt submitted to the model for one brand check
type Query struct {
	Index       int    `json:"index"`        // Submission order (0-based), stable across concurrent runs
	Prompt      string `json:"prompt"`       // Full prompt text sent to the model
	SearchQuery string `json:"search_query"` // User's search query the prompt was derived from
	Target      string `json:"target"`       // Brand/website being tracked
	Model       string `json:"model"`        // Model identifier (e.g., gpt-4o-mini)
}

// Response is the raw model output for a query. Immutable once received.
type Response struct {
	Query      Query     `json:"query"`
	Text       string    `json:"text"`
	Model      string    `json:"model"`                 // Model that actually answered (may differ from requested alias)
	TokensUsed int       `json:"tokens_used,omitempty"`
	Cached     bool      `json:"cached,omitempty"`      // True when served from the response cache
	ReceivedAt time.Time `json:"received_at"`
}

// QueryStatus tracks a query's lifecycle.
// Pending → Submitted → Scored (success) or Pending → Submitted → Failed (API error).
// Scored and Failed are terminal; no automatic retries.
type QueryStatus string

const (
	StatusPending   QueryStatus = "pending"
	StatusSubmitted QueryStatus = "submitted"
	StatusScored    QueryStatus = "scored"
	StatusFailed    QueryStatus = "failed"
)
