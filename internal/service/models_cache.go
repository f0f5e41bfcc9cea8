package service

import (
	"slices"
	"sync"
	"time"

	"github.com/set-night/mindcoach/internal/domain"
)

// ModelsCache holds the provider's model list for ttl. Callers get copies.
type ModelsCache struct {
	mu       sync.RWMutex
	models   []domain.AIModel
	cachedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl, now: time.Now}
}

// Get returns the cached list, or nil when it is empty or stale.
func (c *ModelsCache) Get() []domain.AIModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || c.now().Sub(c.cachedAt) > c.ttl {
		return nil
	}
	return slices.Clone(c.models)
}

func (c *ModelsCache) Set(models []domain.AIModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = slices.Clone(models)
	if c.models == nil {
		c.models = []domain.AIModel{}
	}
	c.cachedAt = c.now()
}
