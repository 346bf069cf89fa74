package narrate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// FallbackSpeaker voices text directly through a locally available speech
// engine when the primary synthesis path fails. It produces sound itself
// rather than returning audio bytes.
type FallbackSpeaker interface {
	Speak(ctx context.Context, text string) error
}

// ESpeak is the local fallback engine, driving eSpeak-NG (or plain eSpeak,
// or the macOS say command) as a subprocess. The voice is chosen once by
// best-effort name matching against a preference list.
type ESpeak struct {
	preferences []string

	once  sync.Once
	path  string
	voice string
	err   error
}

// NewESpeak creates the fallback engine with a voice preference order.
// Detection of the executable and voice is deferred to the first Speak so
// construction never fails; a runtime without any speech engine surfaces as
// a Speak error instead.
func NewESpeak(preferences []string) *ESpeak {
	return &ESpeak{preferences: preferences}
}

func (e *ESpeak) Speak(ctx context.Context, text string) error {
	e.once.Do(e.detect)
	if e.err != nil {
		return e.err
	}

	args := []string{}
	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, e.path, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("fallback speech: %w", err)
	}
	return nil
}

func (e *ESpeak) detect() {
	for _, candidate := range []string{"espeak-ng", "espeak", "say"} {
		if path, err := exec.LookPath(candidate); err == nil {
			e.path = path
			e.voice = e.pickVoice()
			return
		}
	}
	e.err = fmt.Errorf("fallback speech: no local speech engine in PATH")
}

// pickVoice lists the engine's voices and returns the first preference that
// matches one, best effort. An empty result means the engine default.
func (e *ESpeak) pickVoice() string {
	out, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return ""
	}
	return matchVoice(parseVoices(string(out)), e.preferences)
}

// parseVoices extracts voice names from `espeak --voices` output. Each data
// line is "Pty Language Age/Gender VoiceName File Other"; the header line is
// skipped.
func parseVoices(output string) []string {
	var voices []string
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}
	return voices
}

// matchVoice returns the first available voice matching the preference
// list, comparing case-insensitively and accepting substring matches in
// either direction ("en-us" matches "english-us").
func matchVoice(available, preferences []string) string {
	for _, pref := range preferences {
		p := strings.ToLower(pref)
		for _, v := range available {
			lv := strings.ToLower(v)
			if lv == p || strings.Contains(lv, p) || strings.Contains(p, lv) {
				return v
			}
		}
	}
	return ""
}
