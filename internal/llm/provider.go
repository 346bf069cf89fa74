package llm

import (
	"context"
	"errors"
	"time"

	"github.com/roadtales/roadtales/internal/model"
)

// ErrNotConfigured marks a backend that is missing required credentials.
// The acquisition loop treats it as fatal for the whole request: retrying a
// guaranteed configuration failure only burns attempts.
var ErrNotConfigured = errors.New("llm: backend not configured")

// Generator produces one candidate fun fact for a place.
type Generator interface {
	// Generate returns a single candidate fact string. The candidate has
	// not been verified yet.
	Generate(ctx context.Context, req model.FactRequest) (string, error)
}

// Verifier scores a candidate fact's trustworthiness. Implementations fail
// soft: transport errors, timeouts, and malformed responses come back as an
// unverified zero-confidence result, never as an error.
type Verifier interface {
	Verify(ctx context.Context, candidate, place string) model.VerificationResult
}

// Config holds backend configuration for generation and verification.
type Config struct {
	// APIKey is required. An empty key yields ErrNotConfigured.
	APIKey string

	// BaseURL overrides the API endpoint (proxies, compatible servers).
	BaseURL string

	// Model is the chat model for generation and verification.
	Model string

	// Timeout bounds each outbound call.
	Timeout time.Duration
}
