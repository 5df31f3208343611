package llm

import (
	"context"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

// Client sends a single query to the language model and returns its raw
// text response. The only production implementation is OpenAIClient; the
// interface exists so the runner and tracker can be tested without network.
type Client interface {
	// Complete submits the query's prompt and returns the model's response
	Complete(ctx context.Context, query model.Query) (*model.Response, error)

	// IsAvailable checks if the client is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SystemPrompt steers the model toward ranked-list answers, which is what
// the position scorer is built to segment.
const SystemPrompt = "You are a search expert. Provide numbered lists of relevant results based on market presence and popularity."
