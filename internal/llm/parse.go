package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roadtales/roadtales/internal/model"
)

// verificationPayload is the schema the verification prompts ask for.
// Verified is a pointer so the self-assessment strategy, which omits the
// flag, can be told apart from an explicit false.
type verificationPayload struct {
	Verified   *bool  `json:"verified"`
	Confidence *int   `json:"confidence"`
	Reason     string `json:"reason"`
}

// extractJSON returns the JSON body of a model response. Models habitually
// wrap JSON in markdown code fences; take the first fenced block if one is
// present, otherwise the whole trimmed response.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}

	body := s[start+3:]
	// Skip a language tag like ```json on the fence line.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		firstLine := strings.TrimSpace(body[:nl])
		if firstLine != "" && !strings.HasPrefix(firstLine, "{") {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// parseVerification parses a model's verification response against the
// expected schema. Any violation is an error; callers treat it uniformly as
// a failed verification attempt.
func parseVerification(raw string) (verificationPayload, error) {
	var p verificationPayload

	body := extractJSON(raw)
	if body == "" {
		return p, fmt.Errorf("parse verification: empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parse verification: %w", err)
	}

	if p.Confidence == nil {
		return p, fmt.Errorf("parse verification: missing confidence")
	}
	if *p.Confidence < 0 || *p.Confidence > 10 {
		return p, fmt.Errorf("parse verification: confidence %d out of range", *p.Confidence)
	}

	return p, nil
}

// failSoft wraps a verification failure as an unverified result. Errors from
// the verification path never propagate; they count as a failed attempt.
func failSoft(err error) model.VerificationResult {
	return model.VerificationResult{
		Verified:   false,
		Confidence: 0,
		Reason:     err.Error(),
	}
}
