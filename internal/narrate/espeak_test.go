package narrate

import (
	"reflect"
	"testing"
)

func TestParseVoices(t *testing.T) {
	output := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US
 5  en-gb           --/M      English_(Great_Britain) gmw/en

 5  fr              --/M      French_(France)    roa/fr
`
	got := parseVoices(output)
	want := []string{"Afrikaans", "English_(America)", "English_(Great_Britain)", "French_(France)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseVoices = %v, want %v", got, want)
	}
}

func TestParseVoicesEmptyOutput(t *testing.T) {
	if got := parseVoices(""); got != nil {
		t.Errorf("parseVoices(\"\") = %v, want nil", got)
	}
}

func TestMatchVoice(t *testing.T) {
	available := []string{"Afrikaans", "English_(America)", "English_(Great_Britain)", "French_(France)"}

	tests := []struct {
		name        string
		preferences []string
		want        string
	}{
		{
			name:        "exact case-insensitive match",
			preferences: []string{"afrikaans"},
			want:        "Afrikaans",
		},
		{
			name:        "preference earlier in list wins",
			preferences: []string{"french", "english"},
			want:        "French_(France)",
		},
		{
			name:        "substring of available voice",
			preferences: []string{"english_(america)"},
			want:        "English_(America)",
		},
		{
			name:        "first available match for broad preference",
			preferences: []string{"english"},
			want:        "English_(America)",
		},
		{
			name:        "no match falls through to engine default",
			preferences: []string{"klingon"},
			want:        "",
		},
		{
			name:        "empty preferences",
			preferences: nil,
			want:        "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchVoice(available, tt.preferences); got != tt.want {
				t.Errorf("matchVoice(%v) = %q, want %q", tt.preferences, got, tt.want)
			}
		})
	}
}

func TestMatchVoiceShortNames(t *testing.T) {
	// espeak-ng lists plain language codes as voice names; a longer
	// preference like "en-us" should still match the bare "en" voice.
	available := []string{"en", "fr", "de"}
	if got := matchVoice(available, []string{"en-us", "en"}); got != "en" {
		t.Errorf("matchVoice = %q, want en", got)
	}
}
