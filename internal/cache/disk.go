package cache

import (
	"os"
	"path/filepath"
	"time"
)

// Disk persists synthesized audio as raw MP3 files so narration survives a
// restart without re-synthesis. Freshness is judged by file modification
// time; a zero TTL keeps entries forever.
type Disk struct {
	dir string
	ttl time.Duration
}

// NewDisk creates a disk cache rooted at dir.
func NewDisk(dir string, ttl time.Duration) *Disk {
	return &Disk{dir: dir, ttl: ttl}
}

func (d *Disk) Get(key string) ([]byte, bool) {
	path := d.path(key)

	if d.ttl > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, false
		}
		if time.Since(info.ModTime()) > d.ttl {
			_ = os.Remove(path)
			return nil, false
		}
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return audio, true
}

func (d *Disk) Set(key string, audio []byte) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return
	}
	// Cache writes are best-effort; playback must not depend on them.
	_ = os.WriteFile(d.path(key), audio, 0o644)
}

// Clear removes every cached file.
func (d *Disk) Clear() error {
	return os.RemoveAll(d.dir)
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key+".mp3")
}
