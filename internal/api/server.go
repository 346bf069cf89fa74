package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/roadtales/roadtales/internal/llm"
	"github.com/roadtales/roadtales/internal/model"
	"github.com/roadtales/roadtales/internal/narrate"
)

// FactAcquirer runs the bounded generate+verify loop for a place.
type FactAcquirer interface {
	AcquireFact(ctx context.Context, place string, isDestination bool) model.AcquiredFact
}

// Server is the HTTP boundary. Any of the capability dependencies may be nil
// when the matching credential is absent; the affected endpoints then answer
// with a configuration error instead of crashing.
type Server struct {
	http *http.Server
	log  *logrus.Entry
}

// Deps are the capabilities the endpoints expose. A nil member marks a
// capability whose credentials are missing.
type Deps struct {
	Orchestrator FactAcquirer
	Verifier     llm.Verifier
	Synthesizer  narrate.Synthesizer
	Voice        string
	Version      string
}

func NewServer(cfg model.HTTPConfig, deps Deps, log *logrus.Entry) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "api")

	h := &handlers{deps: deps, log: log, started: time.Now()}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer(log))
	r.Use(Logger(log))

	r.Get("/healthz", h.health)
	r.Post("/fact", h.fact)
	r.Post("/verify", h.verify)
	r.Post("/narrate", h.narrate)

	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
