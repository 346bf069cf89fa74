package llm

import (
	"context"
	"fmt"

	"github.com/roadtales/roadtales/internal/model"
)

// SelfAssessVerifier asks the model to rate its own confidence in a
// candidate fact with no external lookup. The candidate passes when the
// self-reported confidence reaches the threshold.
type SelfAssessVerifier struct {
	client    *Client
	threshold int
}

// NewSelfAssessVerifier creates the self-assessment strategy. The
// conventional threshold is 7 out of 10.
func NewSelfAssessVerifier(client *Client, threshold int) *SelfAssessVerifier {
	if threshold <= 0 {
		threshold = 7
	}
	return &SelfAssessVerifier{client: client, threshold: threshold}
}

func (v *SelfAssessVerifier) Verify(ctx context.Context, candidate, place string) model.VerificationResult {
	prompt := fmt.Sprintf(
		"Rate your confidence that the following fact about %s is accurate.\n\n"+
			"Fact: %q\n\n"+
			"Respond with only a JSON object: {\"confidence\": <integer 1-10>, \"reason\": \"<one sentence>\"}",
		place, candidate)

	raw, err := v.client.complete(ctx,
		"You are a careful fact checker. You rate confidence honestly and answer in strict JSON.",
		prompt)
	if err != nil {
		return failSoft(err)
	}

	p, err := parseVerification(raw)
	if err != nil {
		return failSoft(err)
	}

	return model.VerificationResult{
		Verified:   *p.Confidence >= v.threshold,
		Confidence: *p.Confidence,
		Reason:     p.Reason,
	}
}

// EvidenceVerifier lets the model consult what it knows of external sources
// before scoring, and requires both an explicit verified flag and a minimum
// confidence. The numeric bar is lower than self-assessment because the flag
// already gates acceptance.
type EvidenceVerifier struct {
	client    *Client
	threshold int
}

// NewEvidenceVerifier creates the evidence-search strategy. Deployments run
// this with a threshold of 5 or 6.
func NewEvidenceVerifier(client *Client, threshold int) *EvidenceVerifier {
	if threshold <= 0 {
		threshold = 6
	}
	return &EvidenceVerifier{client: client, threshold: threshold}
}

func (v *EvidenceVerifier) Verify(ctx context.Context, candidate, place string) model.VerificationResult {
	prompt := fmt.Sprintf(
		"Check the following fact about %s against sources you consider reliable.\n\n"+
			"Fact: %q\n\n"+
			"Respond with only a JSON object: "+
			"{\"verified\": <true if supported by evidence>, \"confidence\": <integer 1-10>, \"reason\": \"<one sentence citing the kind of evidence>\"}",
		place, candidate)

	raw, err := v.client.complete(ctx,
		"You are an evidence-based fact checker. You only mark a claim verified when sources support it, and answer in strict JSON.",
		prompt)
	if err != nil {
		return failSoft(err)
	}

	p, err := parseVerification(raw)
	if err != nil {
		return failSoft(err)
	}
	if p.Verified == nil {
		return failSoft(fmt.Errorf("parse verification: missing verified flag"))
	}

	return model.VerificationResult{
		Verified:   *p.Verified && *p.Confidence >= v.threshold,
		Confidence: *p.Confidence,
		Reason:     p.Reason,
	}
}

// NewVerifier selects a strategy by mode name: "evidence" or "self".
func NewVerifier(client *Client, mode string, selfThreshold, evidenceThreshold int) Verifier {
	if mode == "evidence" {
		return NewEvidenceVerifier(client, evidenceThreshold)
	}
	return NewSelfAssessVerifier(client, selfThreshold)
}
