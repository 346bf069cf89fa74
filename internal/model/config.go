package model

import "time"

// Config holds the full application configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Trigger     TriggerConfig     `yaml:"trigger"`
	Narration   NarrationConfig   `yaml:"narration"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// LLMConfig configures the text-generation and verification backend.
type LLMConfig struct {
	// Model is the chat model used for generation and verification.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint (for proxies or compatible servers).
	BaseURL string `yaml:"base_url"`

	// APIKey comes from the environment, never from the config file.
	APIKey string `yaml:"-"`

	// Timeout bounds each outbound generate/verify call. A hung call must
	// not block the whole attempt loop.
	Timeout time.Duration `yaml:"timeout"`
}

// AcquisitionConfig tunes the fact acquisition loop.
type AcquisitionConfig struct {
	// MaxAttempts caps generate+verify round trips per request.
	MaxAttempts int `yaml:"max_attempts"`

	// Mode selects the verification strategy: "self" or "evidence".
	Mode string `yaml:"mode"`

	// SelfThreshold is the minimum self-reported confidence (out of 10)
	// for the self-assessment strategy.
	SelfThreshold int `yaml:"self_threshold"`

	// EvidenceThreshold is the minimum confidence for the evidence-search
	// strategy. Lower than SelfThreshold: the explicit verified flag
	// already gates acceptance there.
	EvidenceThreshold int `yaml:"evidence_threshold"`

	// CacheTTL is how long a verified fact for a place is reused before
	// a fresh acquisition is attempted.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RequestsPerSecond and Burst pace outbound LLM calls.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// TriggerConfig tunes when a trip session asks for a new fact.
type TriggerConfig struct {
	// MinInterval is the wall-clock gap that fires the time trigger.
	MinInterval time.Duration `yaml:"min_interval"`

	// MinDistanceMiles is the great-circle distance that fires the
	// distance trigger.
	MinDistanceMiles float64 `yaml:"min_distance_miles"`

	// PositionDebounce coalesces rapid GPS updates before triggers are
	// evaluated.
	PositionDebounce time.Duration `yaml:"position_debounce"`

	// RecheckInterval re-evaluates the time trigger in the background so
	// a stationary session still receives periodic facts.
	RecheckInterval time.Duration `yaml:"recheck_interval"`
}

// NarrationConfig tunes speech synthesis and playback.
type NarrationConfig struct {
	// SpeechModel is the synthesis model for the primary path.
	SpeechModel string `yaml:"speech_model"`

	// Voice is the preferred synthesis voice.
	Voice string `yaml:"voice"`

	// FallbackVoices is the preference order for the local fallback
	// engine, matched best-effort against what the engine offers.
	FallbackVoices []string `yaml:"fallback_voices"`

	// SynthTimeout bounds one synthesis request.
	SynthTimeout time.Duration `yaml:"synth_timeout"`

	// CacheDir holds synthesized audio on disk; empty disables the
	// disk layer.
	CacheDir string `yaml:"cache_dir"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:   "gpt-4o-mini",
			Timeout: 12 * time.Second,
		},
		Acquisition: AcquisitionConfig{
			MaxAttempts:       3,
			Mode:              "self",
			SelfThreshold:     7,
			EvidenceThreshold: 6,
			CacheTTL:          6 * time.Hour,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Trigger: TriggerConfig{
			MinInterval:      5 * time.Minute,
			MinDistanceMiles: 5,
			PositionDebounce: 2 * time.Second,
			RecheckInterval:  30 * time.Second,
		},
		Narration: NarrationConfig{
			SpeechModel:    "tts-1",
			Voice:          "alloy",
			FallbackVoices: []string{"en-us", "en-gb", "en"},
			SynthTimeout:   15 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:         ":8090",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}
