package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roadtales/roadtales/internal/geo"
	"github.com/roadtales/roadtales/internal/model"
)

// Reason names the trigger condition that started an acquisition.
type Reason string

const (
	ReasonNewPlace    Reason = "new_place"
	ReasonElapsedTime Reason = "elapsed_time"
	ReasonDistance    Reason = "distance"
	ReasonDestination Reason = "destination"
)

// Source yields trip positions. Closing the channel ends the subscription.
type Source interface {
	Positions() <-chan model.Position
}

// AcquireFunc starts one fact acquisition. It never fails; total failure
// comes back as the fallback fact.
type AcquireFunc func(ctx context.Context, place string, isDestination bool) model.AcquiredFact

// NarrateFunc receives each acquired fact for narration.
type NarrateFunc func(fact model.AcquiredFact, place string, reason Reason)

// Config tunes when a new acquisition starts.
type Config struct {
	// MinInterval fires the time trigger.
	MinInterval time.Duration

	// MinDistanceMiles fires the distance trigger.
	MinDistanceMiles float64

	// PositionDebounce coalesces rapid position updates.
	PositionDebounce time.Duration

	// RecheckInterval re-evaluates the time trigger in the background so
	// a stationary session still receives periodic facts.
	RecheckInterval time.Duration
}

// DefaultConfig returns the standard trigger thresholds.
func DefaultConfig() Config {
	return Config{
		MinInterval:      5 * time.Minute,
		MinDistanceMiles: 5,
		PositionDebounce: 2 * time.Second,
		RecheckInterval:  30 * time.Second,
	}
}

// Scheduler decides, from continuous position updates, when a new fact
// acquisition should start. Three independent conditions are OR'd: a new
// locality, elapsed wall-clock time, and distance traveled — all measured
// against the last successful acquisition. The scheduler owns the trip's
// TriggerState exclusively.
type Scheduler struct {
	cfg     Config
	acquire AcquireFunc
	narrate NarrateFunc
	log     *logrus.Entry
	now     func() time.Time

	mu          sync.Mutex
	state       model.TriggerState
	destination string
	primed      bool
	inflight    bool
	gen         int
	lastPos     *model.Position
}

// New creates a scheduler. No trigger fires until SetDestination has
// completed its initial acquisition.
func New(cfg Config, acquire AcquireFunc, narrate NarrateFunc, log *logrus.Entry) *Scheduler {
	if cfg.PositionDebounce <= 0 {
		cfg.PositionDebounce = 2 * time.Second
	}
	if cfg.RecheckInterval <= 0 {
		cfg.RecheckInterval = 30 * time.Second
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 5 * time.Minute
	}
	if cfg.MinDistanceMiles <= 0 {
		cfg.MinDistanceMiles = 5
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Scheduler{
		cfg:     cfg,
		acquire: acquire,
		narrate: narrate,
		log:     log.WithField("component", "trigger"),
		now:     time.Now,
	}
}

// Run consumes the position source until the context ends or the source
// closes. Rapid position updates are debounced before triggers are
// evaluated; an independent ticker re-checks the time trigger so a parked
// car still hears something now and then.
func (s *Scheduler) Run(ctx context.Context, src Source) {
	ticker := time.NewTicker(s.cfg.RecheckInterval)
	defer ticker.Stop()

	var pending *model.Position
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case pos, ok := <-src.Positions():
			if !ok {
				return
			}
			pending = &pos
			debounce = time.After(s.cfg.PositionDebounce)

		case <-debounce:
			debounce = nil
			if pending != nil {
				s.checkPosition(ctx, *pending)
				pending = nil
			}

		case <-ticker.C:
			s.recheckTime(ctx)
		}
	}
}

// SetDestination starts a trip toward the named destination: TriggerState is
// fully reset and no trigger fires until this initial acquisition — keyed by
// destination identity, not position — has completed once. The destination
// fact is returned and narrated like any other.
func (s *Scheduler) SetDestination(ctx context.Context, name string) model.AcquiredFact {
	s.mu.Lock()
	if name == s.destination && s.primed {
		s.mu.Unlock()
		return model.AcquiredFact{}
	}
	s.gen++
	gen := s.gen
	s.destination = name
	s.state.Reset()
	s.primed = false
	s.lastPos = nil
	s.inflight = true
	s.mu.Unlock()

	fact := s.acquire(ctx, name, true)

	s.mu.Lock()
	if s.gen == gen {
		s.bumpTimestampLocked()
		s.primed = true
		s.inflight = false
	}
	s.mu.Unlock()

	if s.narrate != nil {
		s.narrate(fact, name, ReasonDestination)
	}
	return fact
}

// ClearDestination ends the trip. TriggerState is destroyed and the
// scheduler goes quiet until a new destination is set.
func (s *Scheduler) ClearDestination() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.destination = ""
	s.state.Reset()
	s.primed = false
	s.inflight = false
	s.lastPos = nil
}

// State returns a copy of the current trigger state.
func (s *Scheduler) State() model.TriggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// checkPosition evaluates all three triggers for a debounced position.
// Evaluations while an acquisition is pending are dropped, not queued.
func (s *Scheduler) checkPosition(ctx context.Context, pos model.Position) {
	s.mu.Lock()
	stored := pos
	s.lastPos = &stored
	if !s.primed || s.inflight {
		s.mu.Unlock()
		return
	}
	if pos.Place == "" {
		// Coordinates the resolver could not name still count for the time
		// and distance triggers, narrating the last known place. With no
		// last known place there is nothing to narrate about.
		pos.Place = s.state.LastPlace
	}
	if pos.Place == "" {
		s.mu.Unlock()
		return
	}
	reason, ok := s.evaluateLocked(pos)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.inflight = true
	gen := s.gen
	s.mu.Unlock()

	go s.runAcquisition(ctx, pos, reason, gen)
}

// recheckTime fires the time trigger for a stationary session.
func (s *Scheduler) recheckTime(ctx context.Context) {
	s.mu.Lock()
	if !s.primed || s.inflight || s.lastPos == nil {
		s.mu.Unlock()
		return
	}
	if s.now().Sub(s.state.LastFactAt) < s.cfg.MinInterval {
		s.mu.Unlock()
		return
	}
	pos := *s.lastPos
	if pos.Place == "" {
		pos.Place = s.state.LastPlace
	}
	if pos.Place == "" {
		s.mu.Unlock()
		return
	}
	s.inflight = true
	gen := s.gen
	s.mu.Unlock()

	go s.runAcquisition(ctx, pos, ReasonElapsedTime, gen)
}

// evaluateLocked ORs the three trigger conditions. Caller holds the mutex.
func (s *Scheduler) evaluateLocked(pos model.Position) (Reason, bool) {
	if pos.Place != "" && pos.Place != s.state.LastPlace {
		return ReasonNewPlace, true
	}
	if s.state.LastFactAt.IsZero() || s.now().Sub(s.state.LastFactAt) >= s.cfg.MinInterval {
		return ReasonElapsedTime, true
	}
	if s.state.LastFactPosition != nil &&
		geo.DistanceMiles(pos.Coordinates, *s.state.LastFactPosition) >= s.cfg.MinDistanceMiles {
		return ReasonDistance, true
	}
	return "", false
}

func (s *Scheduler) runAcquisition(ctx context.Context, pos model.Position, reason Reason, gen int) {
	s.log.WithFields(logrus.Fields{"place": pos.Place, "reason": reason}).Debug("trigger fired")

	fact := s.acquire(ctx, pos.Place, false)

	s.mu.Lock()
	if s.gen != gen {
		// Destination changed underneath us; this result belongs to a
		// dead trip.
		s.mu.Unlock()
		return
	}
	s.state.LastPlace = pos.Place
	c := pos.Coordinates
	s.state.LastFactPosition = &c
	s.bumpTimestampLocked()
	s.inflight = false
	s.mu.Unlock()

	if s.narrate != nil {
		s.narrate(fact, pos.Place, reason)
	}
}

// bumpTimestampLocked advances LastFactAt, keeping it monotonic.
func (s *Scheduler) bumpTimestampLocked() {
	if now := s.now(); now.After(s.state.LastFactAt) {
		s.state.LastFactAt = now
	}
}
