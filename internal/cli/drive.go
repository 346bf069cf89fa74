package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roadtales/roadtales/internal/facts"
	"github.com/roadtales/roadtales/internal/llm"
	"github.com/roadtales/roadtales/internal/model"
	"github.com/roadtales/roadtales/internal/narrate"
	"github.com/roadtales/roadtales/internal/track"
	"github.com/roadtales/roadtales/internal/trigger"
	"github.com/roadtales/roadtales/internal/trip"
)

var (
	driveTrack string
	driveDest  string
	driveSpeed float64
	driveMock  bool
	driveWPM   int
)

// driveCmd represents the drive command
var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Narrate a trip from a recorded track",
	Long: `Drive replays a recorded track as if you were on the road: each position
feeds the trigger scheduler, and every new locality, five minutes, or five
miles produces a verified fun fact read aloud through the speakers.

The track file is newline-delimited JSON, one position per line:

  {"lat":38.7223,"lon":-9.1393,"place":"Lisbon"}
  {"lat":38.5244,"lon":-8.8882,"place":"Setubal","after_ms":300000}

Example:
  roadtales drive --track coast.ndjson --dest "Faro"
  roadtales drive --track coast.ndjson --dest "Faro" --speed 600 --mock`,
	RunE: runDrive,
}

func init() {
	rootCmd.AddCommand(driveCmd)

	driveCmd.Flags().StringVar(&driveTrack, "track", "", "track file (NDJSON), required")
	driveCmd.Flags().StringVar(&driveDest, "dest", "", "destination name, required")
	driveCmd.Flags().Float64Var(&driveSpeed, "speed", 60, "replay speed factor (60 = one recorded minute per second)")
	driveCmd.Flags().BoolVar(&driveMock, "mock", false, "run without credentials or audio hardware (console narration)")
	driveCmd.Flags().IntVar(&driveWPM, "wpm", 150, "simulated speaking rate in mock mode (0 = no pacing)")
	_ = driveCmd.MarkFlagRequired("track")
	_ = driveCmd.MarkFlagRequired("dest")
}

func runDrive(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	points, err := track.LoadFile(driveTrack)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("track %s has no positions", driveTrack)
	}

	acquirer, queue, err := buildTrip(cfg, log)
	if err != nil {
		return err
	}

	session := trip.NewSession(trigger.Config{
		MinInterval:      cfg.Trigger.MinInterval,
		MinDistanceMiles: cfg.Trigger.MinDistanceMiles,
		PositionDebounce: cfg.Trigger.PositionDebounce,
		RecheckInterval:  cfg.Trigger.RecheckInterval,
	}, acquirer, echoNarrator{queue}, log)
	defer session.End()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	color.New(color.FgHiWhite, color.Bold).Printf("\nRoadTales — driving to %s\n", driveDest)
	color.New(color.Faint).Printf("track: %s (%d positions, %gx speed)\n\n", driveTrack, len(points), driveSpeed)

	session.SetDestination(ctx, driveDest)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	replay := track.NewReplay(points, driveSpeed)
	go replay.Run(ctx)
	session.Run(ctx, replay)

	color.New(color.FgGreen).Printf("\nTrip finished.\n")
	return nil
}

// buildTrip assembles the acquisition and narration halves of a session.
// Mock mode runs entirely offline: canned facts, placeholder synthesis and
// console playback.
func buildTrip(cfg *model.Config, log *logrus.Entry) (trip.Acquirer, trip.Narrator, error) {
	fallback := narrate.NewESpeak(cfg.Narration.FallbackVoices)

	if driveMock {
		sink := &narrate.ConsoleSink{Log: log, WPM: driveWPM}
		queue := narrate.NewQueue(narrate.MockSynthesizer{}, nil, sink, cfg.Narration.Voice, log)
		return mockAcquirer{}, queue, nil
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("drive needs OPENAI_API_KEY (or --mock): %w", err)
	}
	verifier := llm.NewVerifier(client, cfg.Acquisition.Mode,
		cfg.Acquisition.SelfThreshold, cfg.Acquisition.EvidenceThreshold)
	orch := facts.NewOrchestrator(client, verifier, facts.Config{
		MaxAttempts:       cfg.Acquisition.MaxAttempts,
		CacheTTL:          cfg.Acquisition.CacheTTL,
		RequestsPerSecond: cfg.Acquisition.RequestsPerSecond,
		Burst:             cfg.Acquisition.Burst,
	}, log)

	synth, err := narrate.NewOpenAISynthesizer(narrate.SynthConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.Narration.SpeechModel,
		Timeout: cfg.Narration.SynthTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	queue := narrate.NewQueue(synth, fallback, narrate.NewSpeaker(), cfg.Narration.Voice, log)
	return orch, queue, nil
}

// echoNarrator prints each narration to the terminal before speaking it, so
// the drive is followable with the volume down.
type echoNarrator struct {
	inner trip.Narrator
}

func (e echoNarrator) Speak(ctx context.Context, text string, opts ...narrate.Option) error {
	color.New(color.FgCyan).Printf("♪ %s\n", text)
	return e.inner.Speak(ctx, text, opts...)
}

func (e echoNarrator) Stop() {
	e.inner.Stop()
}

// mockAcquirer stands in for the LLM loop when driving offline.
type mockAcquirer struct{}

func (mockAcquirer) AcquireFact(ctx context.Context, place string, isDestination bool) model.AcquiredFact {
	if isDestination {
		return model.AcquiredFact{
			Text:     fmt.Sprintf("Welcome aboard! Today's trip ends in %s.", place),
			Verified: true,
		}
	}
	return model.AcquiredFact{
		Text:     fmt.Sprintf("You are passing %s. Locals swear it is worth a stop.", place),
		Verified: true,
	}
}
