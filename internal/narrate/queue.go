package narrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Queue serializes narration onto the single playback resource. Backlog
// collapses to "most recent wins": enqueuing a new narration supersedes both
// the waiting one and the one currently playing. Superseded callers are
// resolved without error — stale narration is worthless, but nobody awaiting
// it did anything wrong.
type Queue struct {
	synth    Synthesizer
	fallback FallbackSpeaker
	sink     Sink
	voice    string
	log      *logrus.Entry

	mu         sync.Mutex
	pending    *request
	active     *request
	processing bool
}

// request is one queued narration and the promise its caller is awaiting.
type request struct {
	text  string
	voice string
	done  chan error

	cancel     context.CancelFunc
	superseded bool
}

// resolve fulfills the caller's promise exactly once.
func (r *request) resolve(err error) {
	r.done <- err
}

// Option adjusts a single Speak call.
type Option func(*request)

// WithVoice overrides the queue's default voice for one narration.
func WithVoice(voice string) Option {
	return func(r *request) { r.voice = voice }
}

// NewQueue creates a narration queue. The sink is owned exclusively by the
// queue from here on; fallback may be nil when no local engine exists.
func NewQueue(synth Synthesizer, fallback FallbackSpeaker, sink Sink, voice string, log *logrus.Entry) *Queue {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Queue{
		synth:    synth,
		fallback: fallback,
		sink:     sink,
		voice:    voice,
		log:      log.WithField("component", "narrate"),
	}
}

// Speak narrates the text. It returns once playback of this narration — or
// a superseding one — has finished or been superseded: nil when a voice
// spoke (or the request was collapsed away), an error only when neither the
// primary nor the fallback path could produce audio. The caller's context
// only abandons the wait; it does not cancel the narration for others.
func (q *Queue) Speak(ctx context.Context, text string, opts ...Option) error {
	req := &request{
		text:  text,
		voice: q.voice,
		done:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(req)
	}

	q.mu.Lock()
	if q.pending != nil {
		// Collapse: the old pending narration will never play.
		q.pending.resolve(nil)
	}
	q.pending = req
	if q.active != nil {
		// Most recent wins; cut the current narration short.
		q.active.superseded = true
		q.active.cancel()
	}
	if !q.processing {
		q.processing = true
		go q.drain()
	}
	q.mu.Unlock()

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels all pending and active narration immediately. Queued-but-
// not-started requests resolve silently. Idempotent; safe with nothing
// playing.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.pending != nil {
		q.pending.resolve(nil)
		q.pending = nil
	}
	if q.active != nil {
		q.active.superseded = true
		q.active.cancel()
	}
	q.mu.Unlock()

	q.sink.Stop()
}

// drain plays backlog items one at a time until none remain. The processing
// flag guarantees a single drain loop, so exactly one request ever drives
// the sink.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		req := q.pending
		q.pending = nil
		if req == nil {
			q.processing = false
			q.mu.Unlock()
			return
		}
		playCtx, cancel := context.WithCancel(context.Background())
		req.cancel = cancel
		q.active = req
		q.mu.Unlock()

		err := q.playOnce(playCtx, req)

		q.mu.Lock()
		superseded := req.superseded
		q.active = nil
		q.mu.Unlock()
		cancel()

		if superseded {
			err = nil
		}
		req.resolve(err)
	}
}

// playOnce runs the full playback path for one narration: primary synthesis
// into the shared sink, then — on any failure along that path — one attempt
// to voice the same text through the local fallback engine.
func (q *Queue) playOnce(ctx context.Context, req *request) error {
	primaryErr := q.playPrimary(ctx, req)
	if primaryErr == nil {
		return nil
	}
	if errors.Is(primaryErr, context.Canceled) {
		// Superseded or stopped, not broken.
		return primaryErr
	}

	q.log.WithError(primaryErr).Warn("primary narration path failed, trying fallback")

	if q.fallback == nil {
		return fmt.Errorf("narration failed with no fallback engine: %w", primaryErr)
	}
	if err := q.fallback.Speak(ctx, req.text); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("both narration paths failed: %w", err)
	}
	return nil
}

func (q *Queue) playPrimary(ctx context.Context, req *request) error {
	if q.synth == nil {
		return fmt.Errorf("no synthesizer configured")
	}
	audio, err := q.synth.Synthesize(ctx, req.text, req.voice)
	if err != nil {
		return err
	}
	return q.sink.Play(ctx, audio)
}
