package facts

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/roadtales/roadtales/internal/model"
)

// Cache keeps verified facts per place so repeated triggers for the same
// locality do not re-spend LLM calls. Only verified facts are stored; the
// fallback sentence is cheap to rebuild and should not mask a later success.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates a fact cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the cached fact for a place, if present and fresh.
func (c *Cache) Get(place string, isDestination bool) (model.AcquiredFact, bool) {
	if v, found := c.cache.Get(cacheKey(place, isDestination)); found {
		return v.(model.AcquiredFact), true
	}
	return model.AcquiredFact{}, false
}

// Set stores a fact for a place. Unverified facts are ignored.
func (c *Cache) Set(place string, isDestination bool, fact model.AcquiredFact) {
	if !fact.Verified {
		return
	}
	c.cache.SetDefault(cacheKey(place, isDestination), fact)
}

// Flush drops all cached facts.
func (c *Cache) Flush() {
	c.cache.Flush()
}

func cacheKey(place string, isDestination bool) string {
	return fmt.Sprintf("%s|%t", strings.ToLower(strings.TrimSpace(place)), isDestination)
}
