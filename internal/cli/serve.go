package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roadtales/roadtales/internal/api"
	"github.com/roadtales/roadtales/internal/cache"
	"github.com/roadtales/roadtales/internal/facts"
	"github.com/roadtales/roadtales/internal/llm"
	"github.com/roadtales/roadtales/internal/model"
	"github.com/roadtales/roadtales/internal/narrate"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the pipeline over HTTP for clients that host their own
playback:

  POST /fact     acquire a verified fun fact for a place
  POST /verify   score a candidate fact
  POST /narrate  synthesize narration audio (MP3)
  GET  /healthz  component readiness

Capabilities whose credentials are missing are reported unready in /healthz
and answer with a configuration error; the server itself always starts.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	srv := api.NewServer(cfg.HTTP, buildDeps(cfg, log), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// audio cache retention for the /narrate path
const (
	audioMemoryTTL = time.Hour
	audioDiskTTL   = 72 * time.Hour
)

// buildDeps assembles the endpoint capabilities. A missing credential
// disables the dependent capability instead of failing startup.
func buildDeps(cfg *model.Config, log *logrus.Entry) api.Deps {
	deps := api.Deps{
		Voice:   cfg.Narration.Voice,
		Version: version,
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		log.WithError(err).Warn("fact generation and verification disabled")
	} else {
		verifier := llm.NewVerifier(client, cfg.Acquisition.Mode,
			cfg.Acquisition.SelfThreshold, cfg.Acquisition.EvidenceThreshold)
		deps.Verifier = verifier
		deps.Orchestrator = facts.NewOrchestrator(client, verifier, facts.Config{
			MaxAttempts:       cfg.Acquisition.MaxAttempts,
			CacheTTL:          cfg.Acquisition.CacheTTL,
			RequestsPerSecond: cfg.Acquisition.RequestsPerSecond,
			Burst:             cfg.Acquisition.Burst,
		}, log)
	}

	synth, err := narrate.NewOpenAISynthesizer(narrate.SynthConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.Narration.SpeechModel,
		Timeout: cfg.Narration.SynthTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("speech synthesis disabled")
	} else {
		deps.Synthesizer = narrate.NewCachingSynthesizer(synth, audioCache(cfg))
	}

	return deps
}

// audioCache builds the synthesized-audio cache: memory always, backed by
// disk when a cache directory is configured.
func audioCache(cfg *model.Config) cache.Cache {
	mem := cache.NewMemory(audioMemoryTTL)
	if cfg.Narration.CacheDir == "" {
		return mem
	}
	return cache.NewLayered(mem, cache.NewDisk(cfg.Narration.CacheDir, audioDiskTTL))
}
