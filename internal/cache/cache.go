package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores synthesized narration audio. Synthesis is the slowest and
// most expensive step of the playback path; replaying a recently narrated
// sentence should not cost a second network round trip.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, audio []byte)
}

// Key derives a cache key from the narration text and voice. The same text
// in a different voice is different audio.
func Key(text, voice string) string {
	hash := sha256.Sum256([]byte(voice + "\x00" + text))
	return hex.EncodeToString(hash[:16])
}
