package llm

import (
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare json",
			raw:  `{"confidence": 8, "reason": "well known"}`,
			want: `{"confidence": 8, "reason": "well known"}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  {\"confidence\": 3}  \n",
			want: `{"confidence": 3}`,
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"confidence\": 9}\n```",
			want: `{"confidence": 9}`,
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"confidence\": 5}\n```",
			want: `{"confidence": 5}`,
		},
		{
			name: "prose before the fence",
			raw:  "Here is my assessment:\n```json\n{\"confidence\": 7}\n```\nHope that helps!",
			want: `{"confidence": 7}`,
		},
		{
			name: "fence on one line",
			raw:  "```{\"confidence\": 2}```",
			want: `{"confidence": 2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.raw); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVerification(t *testing.T) {
	t.Run("valid self-assessment payload", func(t *testing.T) {
		p, err := parseVerification(`{"confidence": 8, "reason": "documented"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *p.Confidence != 8 || p.Reason != "documented" {
			t.Errorf("unexpected payload: %+v", p)
		}
		if p.Verified != nil {
			t.Errorf("expected no verified flag, got %v", *p.Verified)
		}
	})

	t.Run("valid evidence payload", func(t *testing.T) {
		p, err := parseVerification("```json\n{\"verified\": true, \"confidence\": 6, \"reason\": \"census data\"}\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Verified == nil || !*p.Verified || *p.Confidence != 6 {
			t.Errorf("unexpected payload: %+v", p)
		}
	})

	for _, raw := range []string{
		"",
		"not json at all",
		`{"reason": "no score"}`,
		`{"confidence": 11}`,
		`{"confidence": -1}`,
		`{"confidence": "high"}`,
	} {
		t.Run("rejects "+strings.TrimSpace(raw), func(t *testing.T) {
			if _, err := parseVerification(raw); err == nil {
				t.Errorf("parseVerification(%q) expected error, got nil", raw)
			}
		})
	}
}
