package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process audio cache with TTL eviction.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache. Entries older than ttl are evicted.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	if v, found := m.cache.Get(key); found {
		return v.([]byte), true
	}
	return nil, false
}

func (m *Memory) Set(key string, audio []byte) {
	m.cache.SetDefault(key, audio)
}
