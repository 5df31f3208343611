package model

import "time"

// Mention is a detected occurrence of the target within a response.
// Only the first (leftmost) occurrence is recorded; repeats do not move the rank.
type Mention struct {
	Offset  int    `json:"offset"`            // Byte offset of the match in the response text
	Rank    int    `json:"rank"`              // 1-indexed rank among distinct entities mentioned
	Context string `json:"context,omitempty"` // The list item or sentence fragment containing the match
}

// PositionResult is one row of the result set: the scored outcome of a single query.
// Position is nil iff Found is false.
type PositionResult struct {
	Query         Query       `json:"query"`
	Found         bool        `json:"found"`
	Position      *int        `json:"position,omitempty"`
	TotalEntities int         `json:"total_entities"`          // Distinct entities detected in the response
	Context       string      `json:"context,omitempty"`       // Where the target appeared
	RawResponse   string      `json:"raw_response,omitempty"`  // Kept for audit
	Status        QueryStatus `json:"status"`
	Err           string      `json:"error,omitempty"`         // Populated when Status == failed
	Timestamp     time.Time   `json:"timestamp"`
}

// ResultSet is an ordered collection of position results.
// Order always equals query submission order, regardless of completion order.
type ResultSet struct {
	Target  string           `json:"target"`
	Model   string           `json:"model"`
	Results []PositionResult `json:"results"`
}

// Summary aggregates a result set. Failed rows count toward TotalQueries but
// are excluded from every mention statistic.
type Summary struct {
	TotalQueries    int      `json:"total_queries"`
	Scored          int      `json:"scored"`
	Failed          int      `json:"failed"`
	Mentioned       int      `json:"mentioned"`
	MentionRate     float64  `json:"mention_rate"`               // Mentioned / Scored, 0 when nothing scored
	AveragePosition *float64 `json:"average_position,omitempty"` // nil when no mentions
	MedianPosition  *float64 `json:"median_position,omitempty"`
	BestPosition    *int     `json:"best_position,omitempty"`
	WorstPosition   *int     `json:"worst_position,omitempty"`
}
