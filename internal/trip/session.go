// Package trip runs one active trip: it wires the trigger scheduler, the
// fact orchestrator and the narration queue together and exposes the
// user-facing actions (set a destination, read the last fact again, announce
// progress, end the trip). Exactly one session owns the trigger state at a
// time.
package trip

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roadtales/roadtales/internal/model"
	"github.com/roadtales/roadtales/internal/narrate"
	"github.com/roadtales/roadtales/internal/trigger"
)

// Acquirer runs the bounded generate+verify loop for a place.
type Acquirer interface {
	AcquireFact(ctx context.Context, place string, isDestination bool) model.AcquiredFact
}

// Narrator speaks text through the shared playback path. Satisfied by
// narrate.Queue.
type Narrator interface {
	Speak(ctx context.Context, text string, opts ...narrate.Option) error
	Stop()
}

// Session is one active trip.
type Session struct {
	sched *trigger.Scheduler
	queue Narrator
	log   *logrus.Entry

	mu        sync.Mutex
	lastFact  *model.AcquiredFact
	lastPlace string
}

// NewSession creates a trip session. Facts acquired by the scheduler's
// triggers are narrated automatically through the queue.
func NewSession(cfg trigger.Config, acquirer Acquirer, queue Narrator, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Session{
		queue: queue,
		log:   log.WithField("component", "trip"),
	}
	s.sched = trigger.New(cfg, acquirer.AcquireFact, s.onFact, log)
	return s
}

// Run consumes the position source until the context ends or the source
// closes. Usually started in its own goroutine after SetDestination.
func (s *Session) Run(ctx context.Context, src trigger.Source) {
	s.sched.Run(ctx, src)
}

// SetDestination starts the trip toward the named destination, acquiring and
// narrating its introductory fact before any position trigger may fire.
func (s *Session) SetDestination(ctx context.Context, name string) model.AcquiredFact {
	return s.sched.SetDestination(ctx, name)
}

// onFact receives every scheduler-acquired fact and sends it to the queue.
// Narration failure is logged, never propagated: the trip keeps going.
func (s *Session) onFact(fact model.AcquiredFact, place string, reason trigger.Reason) {
	s.mu.Lock()
	f := fact
	s.lastFact = &f
	s.lastPlace = place
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"place":    place,
		"reason":   reason,
		"verified": fact.Verified,
	}).Info("narrating fact")

	if err := s.queue.Speak(context.Background(), fact.Text); err != nil {
		s.log.WithError(err).Warn("narration failed")
	}
}

// ReadAloud re-narrates the most recent fact, as from a read-aloud button.
// It enters the queue directly and so can supersede an in-flight automatic
// narration.
func (s *Session) ReadAloud(ctx context.Context) error {
	s.mu.Lock()
	fact := s.lastFact
	s.mu.Unlock()
	if fact == nil {
		return fmt.Errorf("nothing to read yet")
	}
	return s.queue.Speak(ctx, fact.Text)
}

// LastFact returns the most recently narrated fact and its place, if any.
func (s *Session) LastFact() (model.AcquiredFact, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFact == nil {
		return model.AcquiredFact{}, "", false
	}
	return *s.lastFact, s.lastPlace, true
}

// AnnounceProgress speaks the remaining distance and arrival estimate, as
// from a "how long until arrival" button.
func (s *Session) AnnounceProgress(ctx context.Context, remainingMiles float64, eta time.Duration) error {
	return s.queue.Speak(ctx, ProgressSentence(remainingMiles, eta))
}

// End finishes the trip: trigger state is destroyed and anything queued or
// playing is cut off. Safe to call more than once.
func (s *Session) End() {
	s.sched.ClearDestination()
	s.queue.Stop()
}

// ProgressSentence phrases remaining distance and time for narration.
func ProgressSentence(remainingMiles float64, eta time.Duration) string {
	var b strings.Builder
	switch {
	case remainingMiles < 1:
		b.WriteString("You are almost there.")
	case remainingMiles < 10:
		fmt.Fprintf(&b, "%.1f miles to go.", remainingMiles)
	default:
		fmt.Fprintf(&b, "%.0f miles to go.", remainingMiles)
	}
	if eta > 0 {
		b.WriteString(" Estimated arrival in ")
		b.WriteString(speakDuration(eta))
		b.WriteString(".")
	}
	return b.String()
}

// speakDuration renders a duration the way a person would say it.
func speakDuration(d time.Duration) string {
	if d < time.Minute {
		return "under a minute"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	switch {
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " and " + plural(m, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
