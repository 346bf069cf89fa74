package narrate

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MockSynthesizer produces placeholder audio without a network call, for
// tests and credential-less runs.
type MockSynthesizer struct{}

func (MockSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return []byte("mock-mp3:" + voice + ":" + text), nil
}

// ConsoleSink "plays" narration by logging it, pacing itself by a rough
// words-per-minute estimate so queue timing behaves like real playback.
type ConsoleSink struct {
	Log *logrus.Entry

	// WPM is the simulated speaking rate; 0 means no delay.
	WPM int
}

func (c *ConsoleSink) Play(ctx context.Context, mp3Audio []byte) error {
	text := string(mp3Audio)
	if i := strings.LastIndex(text, ":"); i >= 0 {
		text = text[i+1:]
	}
	if c.Log != nil {
		c.Log.WithField("text", text).Info("narrating (console)")
	}

	if c.WPM <= 0 {
		return nil
	}
	words := len(strings.Fields(text))
	d := time.Duration(float64(words) / float64(c.WPM) * float64(time.Minute))
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ConsoleSink) Stop() {}
