package cache

// Layered checks a fast cache before a slow one and backfills the fast
// layer on a slow-layer hit. Used as memory-over-disk for narration audio.
type Layered struct {
	fast Cache
	slow Cache
}

// NewLayered creates a two-layer cache.
func NewLayered(fast, slow Cache) *Layered {
	return &Layered{fast: fast, slow: slow}
}

func (l *Layered) Get(key string) ([]byte, bool) {
	if audio, ok := l.fast.Get(key); ok {
		return audio, true
	}
	if audio, ok := l.slow.Get(key); ok {
		l.fast.Set(key, audio)
		return audio, true
	}
	return nil, false
}

func (l *Layered) Set(key string, audio []byte) {
	l.fast.Set(key, audio)
	l.slow.Set(key, audio)
}
