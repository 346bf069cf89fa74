package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roadtales/roadtales/internal/model"
)

type handlers struct {
	deps    Deps
	log     *logrus.Entry
	started time.Time
}

// fact runs the acquisition loop. Upstream failures are absorbed inside the
// orchestrator, so a well-formed request always gets 200 — the only hard
// failure left is missing server configuration.
func (h *handlers) fact(w http.ResponseWriter, r *http.Request) {
	var req model.FactRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.PlaceName = strings.TrimSpace(req.PlaceName)
	if req.PlaceName == "" {
		WriteError(w, http.StatusBadRequest, "placeName is required")
		return
	}
	if h.deps.Orchestrator == nil {
		h.log.Error("fact request with no generation backend configured")
		WriteError(w, http.StatusInternalServerError, "fact service not configured")
		return
	}

	fact := h.deps.Orchestrator.AcquireFact(r.Context(), req.PlaceName, req.IsDestination)
	WriteJSON(w, http.StatusOK, fact)
}

type verifyRequest struct {
	FunFact   string `json:"funFact"`
	PlaceName string `json:"placeName"`
}

type verifyResponse struct {
	Verified   bool `json:"verified"`
	Confidence int  `json:"confidence"`
}

// verify scores one candidate fact. The verifier fails soft, so a well-formed
// request always gets 200.
func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FunFact) == "" || strings.TrimSpace(req.PlaceName) == "" {
		WriteError(w, http.StatusBadRequest, "funFact and placeName are required")
		return
	}
	if h.deps.Verifier == nil {
		h.log.Error("verify request with no verification backend configured")
		WriteError(w, http.StatusInternalServerError, "verify service not configured")
		return
	}

	result := h.deps.Verifier.Verify(r.Context(), req.FunFact, req.PlaceName)
	WriteJSON(w, http.StatusOK, verifyResponse{
		Verified:   result.Verified,
		Confidence: result.Confidence,
	})
}

type narrateRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// narrate synthesizes the text and returns raw MP3 bytes. Unlike /fact, a
// synthesis failure here is surfaced: the caller owns the fallback decision.
func (h *handlers) narrate(w http.ResponseWriter, r *http.Request) {
	var req narrateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "text is required")
		return
	}
	if h.deps.Synthesizer == nil {
		h.log.Error("narrate request with no synthesis backend configured")
		WriteError(w, http.StatusInternalServerError, "narration service not configured")
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = h.deps.Voice
	}
	audio, err := h.deps.Synthesizer.Synthesize(r.Context(), req.Text, voice)
	if err != nil {
		h.log.WithError(err).Warn("speech synthesis failed")
		WriteError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

type healthResponse struct {
	Status     string          `json:"status"`
	Version    string          `json:"version,omitempty"`
	UptimeSecs int64           `json:"uptime_seconds"`
	Components map[string]bool `json:"components"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    h.deps.Version,
		UptimeSecs: int64(time.Since(h.started).Seconds()),
		Components: map[string]bool{
			"facts":     h.deps.Orchestrator != nil,
			"verify":    h.deps.Verifier != nil,
			"narration": h.deps.Synthesizer != nil,
		},
	})
}
