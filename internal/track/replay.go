package track

import (
	"context"
	"time"

	"github.com/roadtales/roadtales/internal/model"
)

// Replay plays a loaded track back as a position source, honoring each
// point's delay (optionally compressed by a speed factor). The channel
// closes when the track is exhausted or the context ends.
type Replay struct {
	points []Point
	speed  float64
	out    chan model.Position
}

// NewReplay creates a replay source. speed scales the recorded delays:
// 1 replays in real time, 60 turns recorded minutes into seconds. Values
// below 1 are treated as 1.
func NewReplay(points []Point, speed float64) *Replay {
	if speed < 1 {
		speed = 1
	}
	return &Replay{
		points: points,
		speed:  speed,
		out:    make(chan model.Position),
	}
}

func (r *Replay) Positions() <-chan model.Position {
	return r.out
}

// Run emits the track and closes the channel. Call it once, usually in its
// own goroutine alongside the scheduler's Run.
func (r *Replay) Run(ctx context.Context) {
	defer close(r.out)
	for _, p := range r.points {
		if p.AfterMS > 0 {
			delay := time.Duration(float64(p.AfterMS)/r.speed) * time.Millisecond
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
		select {
		case r.out <- p.position(time.Now()):
		case <-ctx.Done():
			return
		}
	}
}

// Static is a fixed in-memory position source for tests and demos.
type Static struct {
	out chan model.Position
}

// NewStatic creates a source pre-loaded with the given positions; the
// channel is closed once they are consumed.
func NewStatic(positions ...model.Position) *Static {
	out := make(chan model.Position, len(positions))
	for _, p := range positions {
		out <- p
	}
	close(out)
	return &Static{out: out}
}

func (s *Static) Positions() <-chan model.Position {
	return s.out
}
