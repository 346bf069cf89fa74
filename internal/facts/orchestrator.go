package facts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/roadtales/roadtales/internal/llm"
	"github.com/roadtales/roadtales/internal/model"
)

// fallbackTemplate is the deterministic fact used when every attempt is
// exhausted. It must always be narratable: total failure ends in a generic
// sentence, never in silence.
const fallbackTemplate = "%s has plenty of stories to tell. I couldn't verify a specific fact just now, but keep your eyes open as you pass through!"

// attemptState is the acquisition state machine: the loop stays in
// attempting until a candidate verifies or the attempt budget runs out.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateVerified
	stateExhausted
)

// Config tunes the acquisition loop.
type Config struct {
	// MaxAttempts caps generate+verify round trips per request.
	MaxAttempts int

	// CacheTTL is how long an acquired fact for a place is reused.
	// Zero disables caching.
	CacheTTL time.Duration

	// RequestsPerSecond and Burst pace outbound LLM calls.
	RequestsPerSecond float64
	Burst             int
}

// Orchestrator turns a place name into a fact that has passed a confidence
// check, with bounded attempts and graceful degradation.
type Orchestrator struct {
	gen     llm.Generator
	ver     llm.Verifier
	cfg     Config
	cache   *Cache
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewOrchestrator creates an orchestrator around a generator and a
// verification strategy.
func NewOrchestrator(gen llm.Generator, ver llm.Verifier, cfg Config, log *logrus.Entry) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.MaxAttempts
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	var cache *Cache
	if cfg.CacheTTL > 0 {
		cache = NewCache(cfg.CacheTTL)
	}

	return &Orchestrator{
		gen:     gen,
		ver:     ver,
		cfg:     cfg,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:     log.WithField("component", "facts"),
	}
}

// AcquireFact returns a verified fact about the place, or the deterministic
// fallback with Verified=false. It never returns an error: every failure
// mode inside the loop has a defined degraded output.
func (o *Orchestrator) AcquireFact(ctx context.Context, place string, isDestination bool) model.AcquiredFact {
	if cached, ok := o.cachedFact(place, isDestination); ok {
		return cached
	}

	req := model.FactRequest{PlaceName: place, IsDestination: isDestination}
	state := stateAttempting
	var verified model.AcquiredFact

	for attempt := 1; state == stateAttempting; attempt++ {
		if attempt > o.cfg.MaxAttempts {
			state = stateExhausted
			break
		}

		candidate, err := o.attempt(ctx, req, attempt)
		switch {
		case err == nil && candidate != "":
			verified = model.AcquiredFact{Text: candidate, Verified: true}
			state = stateVerified
		case errors.Is(err, llm.ErrNotConfigured), errors.Is(err, context.Canceled):
			// Missing credentials fail every attempt the same way, and a
			// canceled caller wants no more outbound calls. Skip straight
			// to the fallback.
			o.log.WithError(err).Warn("aborting acquisition")
			state = stateExhausted
		default:
			// A failed attempt, transport error, or confidence rejection
			// just moves the loop along.
		}
	}

	if state == stateVerified {
		o.storeFact(place, isDestination, verified)
		return verified
	}

	o.log.WithField("place", place).Info("attempts exhausted, using fallback fact")
	return FallbackFact(place)
}

// attempt runs one generate+verify round trip. It returns the candidate
// text when it verified, empty text when it did not, and an error only for
// failures that should end the whole loop or be counted against it.
func (o *Orchestrator) attempt(ctx context.Context, req model.FactRequest, n int) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	log := o.log.WithFields(logrus.Fields{"place": req.PlaceName, "attempt": n})

	candidate, err := o.gen.Generate(ctx, req)
	if err != nil {
		log.WithError(err).Debug("generation failed")
		return "", err
	}

	res := o.ver.Verify(ctx, candidate, req.PlaceName)
	log.WithFields(logrus.Fields{
		"verified":   res.Verified,
		"confidence": res.Confidence,
	}).Debug("candidate scored")

	if !res.Verified {
		// Confidence rejection is a normal "try again" signal.
		return "", nil
	}
	return candidate, nil
}

// FallbackFact builds the deterministic fallback sentence for a place.
func FallbackFact(place string) model.AcquiredFact {
	return model.AcquiredFact{
		Text:     fmt.Sprintf(fallbackTemplate, place),
		Verified: false,
	}
}

func (o *Orchestrator) cachedFact(place string, isDestination bool) (model.AcquiredFact, bool) {
	if o.cache == nil {
		return model.AcquiredFact{}, false
	}
	return o.cache.Get(place, isDestination)
}

func (o *Orchestrator) storeFact(place string, isDestination bool, fact model.AcquiredFact) {
	if o.cache == nil {
		return
	}
	o.cache.Set(place, isDestination, fact)
}
