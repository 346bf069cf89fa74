package narrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Sink is the audio output a narration plays through. Play blocks until the
// audio finishes or the context is canceled. The narration queue is the only
// caller; no other component touches the output directly.
type Sink interface {
	Play(ctx context.Context, mp3Audio []byte) error
	Stop()
}

// Speaker is the process-wide playback resource.
//
// Platform invariant: the underlying audio device is opened exactly once, on
// first playback, and reused for the lifetime of the process. The original
// client ran on mobile browsers that only allow playback through a handle
// first invoked inside a user-gesture call stack; destroying and recreating
// the handle re-locks it. beep's package-level speaker has the same shape —
// re-running Init drops whatever is playing and reopens the device — so the
// once-guard here is a behavior to preserve, not an optimization.
type Speaker struct {
	once     sync.Once
	initErr  error
	rate     beep.SampleRate
	opened   atomic.Bool
	playLock sync.Mutex
}

// NewSpeaker creates the playback resource. The device is not opened until
// the first Play.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play decodes and plays one MP3 clip, blocking until it finishes. A
// canceled context stops playback immediately and releases the decoder.
func (s *Speaker) Play(ctx context.Context, mp3Audio []byte) error {
	s.once.Do(func() {
		s.rate = beep.SampleRate(44100)
		s.initErr = speaker.Init(s.rate, s.rate.N(time.Second/10))
		s.opened.Store(s.initErr == nil)
	})
	if s.initErr != nil {
		return fmt.Errorf("open audio device: %w", s.initErr)
	}

	// One clip at a time; the queue guarantees this, the lock enforces it.
	s.playLock.Lock()
	defer s.playLock.Unlock()

	streamer, format, err := mp3.Decode(nopReadSeekCloser{bytes.NewReader(mp3Audio)})
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}
	defer streamer.Close()

	done := make(chan struct{})
	resampled := beep.Resample(4, format.SampleRate, s.rate, streamer)
	speaker.Play(beep.Seq(resampled, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Stop silences the device. Safe to call with nothing playing, before the
// device has ever been opened, and repeatedly.
func (s *Speaker) Stop() {
	if s.opened.Load() {
		speaker.Clear()
	}
}

// nopReadSeekCloser adapts an in-memory reader to the ReadCloser the MP3
// decoder wants.
type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

var _ io.ReadCloser = nopReadSeekCloser{}
