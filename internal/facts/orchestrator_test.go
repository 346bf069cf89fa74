package facts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roadtales/roadtales/internal/llm"
	"github.com/roadtales/roadtales/internal/model"
)

// stubGenerator returns scripted candidates (or errors) in order.
type stubGenerator struct {
	mu         sync.Mutex
	candidates []string
	errs       []error
	calls      int
}

func (g *stubGenerator) Generate(ctx context.Context, req model.FactRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.candidates) {
		return g.candidates[i], nil
	}
	return fmt.Sprintf("candidate %d", i+1), nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// stubVerifier returns scripted results in order.
type stubVerifier struct {
	mu      sync.Mutex
	results []model.VerificationResult
	calls   int
}

func (v *stubVerifier) Verify(ctx context.Context, candidate, place string) model.VerificationResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.calls
	v.calls++
	if i < len(v.results) {
		return v.results[i]
	}
	return model.VerificationResult{Verified: false, Confidence: 0}
}

func (v *stubVerifier) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func fastConfig() Config {
	return Config{MaxAttempts: 3, RequestsPerSecond: 1000, Burst: 10}
}

func TestAcquireFactShortCircuitsOnFirstVerified(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"The town hall is a former grain silo."}}
	ver := &stubVerifier{results: []model.VerificationResult{
		{Verified: true, Confidence: 9},
	}}

	o := NewOrchestrator(gen, ver, fastConfig(), nil)
	fact := o.AcquireFact(context.Background(), "Springfield", false)

	if !fact.Verified {
		t.Fatalf("expected verified fact, got %+v", fact)
	}
	if fact.Text != "The town hall is a former grain silo." {
		t.Errorf("unexpected text: %q", fact.Text)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator invoked %d times, want exactly 1", gen.callCount())
	}
	if ver.callCount() != 1 {
		t.Errorf("verifier invoked %d times, want exactly 1", ver.callCount())
	}
}

func TestAcquireFactVerifiesOnLaterAttempt(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"first", "second", "third"}}
	ver := &stubVerifier{results: []model.VerificationResult{
		{Verified: false, Confidence: 3},
		{Verified: true, Confidence: 8},
	}}

	o := NewOrchestrator(gen, ver, fastConfig(), nil)
	fact := o.AcquireFact(context.Background(), "Springfield", false)

	if !fact.Verified || fact.Text != "second" {
		t.Errorf("expected second candidate verified, got %+v", fact)
	}
	if gen.callCount() != 2 {
		t.Errorf("generator invoked %d times, want 2", gen.callCount())
	}
}

func TestAcquireFactExhaustedReturnsFallback(t *testing.T) {
	gen := &stubGenerator{}
	ver := &stubVerifier{} // always unverified

	o := NewOrchestrator(gen, ver, fastConfig(), nil)
	fact := o.AcquireFact(context.Background(), "Shelbyville", false)

	if fact.Verified {
		t.Fatalf("expected unverified fallback, got %+v", fact)
	}
	if fact != FallbackFact("Shelbyville") {
		t.Errorf("expected the deterministic fallback, got %q", fact.Text)
	}
	if gen.callCount() != 3 {
		t.Errorf("generator invoked %d times, want MaxAttempts (3)", gen.callCount())
	}
}

func TestAcquireFactGeneratorErrorBurnsOneAttempt(t *testing.T) {
	gen := &stubGenerator{
		candidates: []string{"", "recovered fact"},
		errs:       []error{errors.New("transient network error")},
	}
	ver := &stubVerifier{results: []model.VerificationResult{
		{Verified: true, Confidence: 8},
	}}

	o := NewOrchestrator(gen, ver, fastConfig(), nil)
	fact := o.AcquireFact(context.Background(), "Springfield", false)

	if !fact.Verified || fact.Text != "recovered fact" {
		t.Errorf("expected recovery on attempt 2, got %+v", fact)
	}
	if gen.callCount() != 2 {
		t.Errorf("generator invoked %d times, want 2", gen.callCount())
	}
	// The failed generation never reached the verifier.
	if ver.callCount() != 1 {
		t.Errorf("verifier invoked %d times, want 1", ver.callCount())
	}
}

func TestAcquireFactConfigErrorAbortsImmediately(t *testing.T) {
	gen := &stubGenerator{errs: []error{
		fmt.Errorf("create client: %w", llm.ErrNotConfigured),
		fmt.Errorf("create client: %w", llm.ErrNotConfigured),
		fmt.Errorf("create client: %w", llm.ErrNotConfigured),
	}}
	ver := &stubVerifier{}

	o := NewOrchestrator(gen, ver, fastConfig(), nil)
	fact := o.AcquireFact(context.Background(), "Springfield", false)

	if fact.Verified {
		t.Fatalf("expected fallback, got %+v", fact)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator invoked %d times, want 1 (no retries on config errors)", gen.callCount())
	}
}

func TestAcquireFactNeverBlowsThroughAttemptBudget(t *testing.T) {
	gen := &stubGenerator{}
	ver := &stubVerifier{}

	cfg := fastConfig()
	cfg.MaxAttempts = 5
	o := NewOrchestrator(gen, ver, cfg, nil)
	o.AcquireFact(context.Background(), "Springfield", false)

	if gen.callCount() > 5 {
		t.Errorf("generator invoked %d times, budget was 5", gen.callCount())
	}
}

func TestAcquireFactUsesCache(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"cached fact"}}
	ver := &stubVerifier{results: []model.VerificationResult{
		{Verified: true, Confidence: 9},
	}}

	cfg := fastConfig()
	cfg.CacheTTL = time.Minute
	o := NewOrchestrator(gen, ver, cfg, nil)

	first := o.AcquireFact(context.Background(), "Springfield", false)
	second := o.AcquireFact(context.Background(), "springfield ", false)

	if first != second {
		t.Errorf("expected cache hit, got %+v then %+v", first, second)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator invoked %d times, want 1 (second call cached)", gen.callCount())
	}

	// A destination request is a different cache entry.
	o.AcquireFact(context.Background(), "Springfield", true)
	if gen.callCount() != 2 {
		t.Errorf("generator invoked %d times, want 2 (destination not cached)", gen.callCount())
	}
}

func TestFallbackFactIsDeterministic(t *testing.T) {
	a := FallbackFact("Springfield")
	b := FallbackFact("Springfield")
	if a != b {
		t.Errorf("fallback not deterministic: %+v vs %+v", a, b)
	}
	if a.Verified {
		t.Error("fallback must be unverified")
	}
	if !strings.Contains(a.Text, "Springfield") {
		t.Errorf("fallback should mention the place: %q", a.Text)
	}
}
