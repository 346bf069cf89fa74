package model

// FactRequest describes a single fact acquisition. One is created per
// acquisition and never mutated afterwards.
type FactRequest struct {
	PlaceName     string `json:"placeName"`
	IsDestination bool   `json:"isDestination"`
}

// VerificationResult is the outcome of checking one candidate fact.
// Produced once per candidate and never mutated.
type VerificationResult struct {
	// Verified reports whether the candidate passed the strategy's bar.
	Verified bool `json:"verified"`

	// Confidence is the 0-10 trust level for the candidate, either
	// self-reported or evidence-derived.
	Confidence int `json:"confidence"`

	// Reason is a short explanation of the score, when the backend
	// provided one.
	Reason string `json:"reason,omitempty"`
}

// AcquiredFact is the orchestrator's final output. Verified is false only
// for the deterministic fallback sentence.
type AcquiredFact struct {
	Text     string `json:"funFact"`
	Verified bool   `json:"verified"`
}
