package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
)

// ErrorKind classifies API failures. All kinds are non-fatal to a batch:
// the runner records them per-row and moves on.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"      // Invalid or missing API key (401/403)
	KindQuota     ErrorKind = "quota"     // Provider-side rate limit or exhausted quota (429)
	KindNetwork   ErrorKind = "network"   // Transport failure, timeout, connection refused
	KindMalformed ErrorKind = "malformed" // Bad request or an unusable response body
)

// APIError wraps a provider failure with its classification so callers can
// branch with errors.As without parsing message strings.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("openai api error (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("openai api error (%s): %v", e.Kind, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyError maps go-openai and transport errors onto the error taxonomy
func classifyError(err error) *APIError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Kind:       kindForStatus(apiErr.HTTPStatusCode),
			StatusCode: apiErr.HTTPStatusCode,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{
			Kind:       kindForStatus(reqErr.HTTPStatusCode),
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindNetwork, Err: err}
	}

	// Unrecognized errors from the client are transport-level in practice
	// (DNS, TLS, closed connections), so treat them as network failures.
	return &APIError{Kind: KindNetwork, Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindQuota
	case status >= 400 && status < 500:
		return KindMalformed
	default:
		return KindNetwork
	}
}
