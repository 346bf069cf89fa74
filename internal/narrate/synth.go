package narrate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/roadtales/roadtales/internal/cache"
	"github.com/roadtales/roadtales/internal/llm"
)

// Synthesizer turns narration text into MP3 audio. This is the primary
// playback path; when it fails at any stage the queue retries the same text
// through the local fallback speaker instead.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// OpenAISynthesizer requests synthesized speech from the OpenAI audio API.
type OpenAISynthesizer struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// SynthConfig configures the primary synthesizer.
type SynthConfig struct {
	APIKey  string
	BaseURL string

	// Model is the speech model, e.g. "tts-1".
	Model string

	// Timeout bounds one synthesis request.
	Timeout time.Duration
}

// NewOpenAISynthesizer creates the primary synthesizer. Returns
// llm.ErrNotConfigured when no API key is present.
func NewOpenAISynthesizer(cfg SynthConfig) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("create synthesizer: %w", llm.ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &OpenAISynthesizer{
		api:     openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Synthesize returns MP3 audio for the text.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesize speech: empty audio")
	}
	return audio, nil
}

// CachingSynthesizer wraps a synthesizer with an audio cache so repeated
// narration of the same text skips the network round trip.
type CachingSynthesizer struct {
	inner Synthesizer
	cache cache.Cache
}

// NewCachingSynthesizer wraps inner with the given cache.
func NewCachingSynthesizer(inner Synthesizer, c cache.Cache) *CachingSynthesizer {
	return &CachingSynthesizer{inner: inner, cache: c}
}

func (s *CachingSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	key := cache.Key(text, voice)
	if audio, ok := s.cache.Get(key); ok {
		return audio, nil
	}

	audio, err := s.inner.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, audio)
	return audio, nil
}
