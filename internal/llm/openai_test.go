package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/roadtales/roadtales/internal/model"
)

// chatServer returns an httptest server answering chat completions with the
// given message content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "test-key", BaseURL: baseURL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	server := chatServer(t, "  Boulder sits exactly one mile above sea level.  ")
	defer server.Close()

	c := newTestClient(t, server.URL)
	fact, err := c.Generate(context.Background(), model.FactRequest{PlaceName: "Boulder, CO"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fact != "Boulder sits exactly one mile above sea level." {
		t.Errorf("unexpected fact: %q", fact)
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.Generate(context.Background(), model.FactRequest{PlaceName: "Nowhere"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSelfAssessVerifier(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantVerified   bool
		wantConfidence int
	}{
		{
			name:           "above threshold",
			response:       `{"confidence": 8, "reason": "widely documented"}`,
			wantVerified:   true,
			wantConfidence: 8,
		},
		{
			name:           "at threshold",
			response:       `{"confidence": 7, "reason": "fairly sure"}`,
			wantVerified:   true,
			wantConfidence: 7,
		},
		{
			name:           "below threshold",
			response:       `{"confidence": 4, "reason": "cannot confirm"}`,
			wantVerified:   false,
			wantConfidence: 4,
		},
		{
			name:           "fenced response",
			response:       "```json\n{\"confidence\": 9, \"reason\": \"official record\"}\n```",
			wantVerified:   true,
			wantConfidence: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, tt.response)
			defer server.Close()

			v := NewSelfAssessVerifier(newTestClient(t, server.URL), 7)
			res := v.Verify(context.Background(), "some fact", "Springfield")
			if res.Verified != tt.wantVerified || res.Confidence != tt.wantConfidence {
				t.Errorf("Verify() = %+v, want verified=%v confidence=%d",
					res, tt.wantVerified, tt.wantConfidence)
			}
		})
	}
}

func TestSelfAssessVerifierFailsSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed model output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				resp := openai.ChatCompletionResponse{
					Choices: []openai.ChatCompletionChoice{
						{Message: openai.ChatCompletionMessage{Content: "I am quite sure this is true."}},
					},
				}
				_ = json.NewEncoder(w).Encode(resp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			v := NewSelfAssessVerifier(newTestClient(t, server.URL), 7)
			res := v.Verify(context.Background(), "some fact", "Springfield")
			if res.Verified || res.Confidence != 0 {
				t.Errorf("expected unverified zero-confidence result, got %+v", res)
			}
			if res.Reason == "" {
				t.Error("expected a reason explaining the soft failure")
			}
		})
	}
}

func TestSelfAssessVerifierTimeoutFailsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	v := NewSelfAssessVerifier(newTestClient(t, server.URL), 7)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := v.Verify(ctx, "some fact", "Springfield")
	if res.Verified {
		t.Errorf("expected unverified result on timeout, got %+v", res)
	}
}

func TestEvidenceVerifier(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		threshold    int
		wantVerified bool
	}{
		{
			name:         "flag and confidence both pass",
			response:     `{"verified": true, "confidence": 6, "reason": "state archives"}`,
			threshold:    6,
			wantVerified: true,
		},
		{
			name:         "confidence passes but flag is false",
			response:     `{"verified": false, "confidence": 9, "reason": "contradicted by sources"}`,
			threshold:    6,
			wantVerified: false,
		},
		{
			name:         "flag true but confidence below bar",
			response:     `{"verified": true, "confidence": 4, "reason": "single weak source"}`,
			threshold:    5,
			wantVerified: false,
		},
		{
			name:         "missing flag fails soft",
			response:     `{"confidence": 8, "reason": "no flag"}`,
			threshold:    6,
			wantVerified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, tt.response)
			defer server.Close()

			v := NewEvidenceVerifier(newTestClient(t, server.URL), tt.threshold)
			res := v.Verify(context.Background(), "some fact", "Shelbyville")
			if res.Verified != tt.wantVerified {
				t.Errorf("Verify() = %+v, want verified=%v", res, tt.wantVerified)
			}
		})
	}
}

func TestNewVerifierSelectsStrategy(t *testing.T) {
	c := newTestClient(t, "http://localhost:0")

	if _, ok := NewVerifier(c, "evidence", 7, 6).(*EvidenceVerifier); !ok {
		t.Error("expected evidence strategy")
	}
	if _, ok := NewVerifier(c, "self", 7, 6).(*SelfAssessVerifier); !ok {
		t.Error("expected self-assessment strategy")
	}
	if _, ok := NewVerifier(c, "", 7, 6).(*SelfAssessVerifier); !ok {
		t.Error("expected self-assessment strategy for empty mode")
	}
}
