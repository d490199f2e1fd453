package openai

import (
	"context"
	"errors"
	"fmt"
	"net"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/resilience"
)

// IsTransient reports whether a failed API call may succeed on retry:
// network failures, 429 and 5xx responses.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.TransientStatus(reqErr.HTTPStatusCode)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return resilience.TransientStatus(apiErr.HTTPStatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// errorType labels a failure for the error metrics.
func errorType(err error) string {
	switch code := statusOf(err); {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case code == 429:
		return "rate_limited"
	case code > 0:
		return "api_error"
	default:
		return "transport"
	}
}

// statusOf returns the HTTP status carried by an API error, or 0.
func statusOf(err error) int {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	return 0
}

// parseAPIError extracts a human-readable error from the API response and wraps it with sentinel.
func parseAPIError(kind string, err, sentinel error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%s API unavailable: %w: %w", kind, err, sentinel)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", kind, reqErr.HTTPStatusCode, detail, sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", kind, apiErr.HTTPStatusCode, apiErr.Message, sentinel)
	}

	return fmt.Errorf("%s request failed: %v: %w", kind, err, sentinel)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
