package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
)

// ModelCache caches the (provider_id, model, temperature) triple the model
// resolver derives for a given (flow provider, node type) pair, so repeat
// runs of the same flow skip the resolver's lookup table walk. Model
// resolution is cheap and this is a latency nicety, not a correctness
// requirement: a cache miss or eviction just re-resolves.
type ModelCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewModelCache creates a model cache with the given entry TTL. A zero ttl
// defaults to 15 minutes, since node-type-to-model defaults change only on
// deploy.
func NewModelCache(cache *RedisCache, ttl time.Duration) *ModelCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &ModelCache{cache: cache, ttl: ttl}
}

func (m *ModelCache) key(flowProviderID, nodeType string) string {
	return fmt.Sprintf("resolved_model:%s:%s", flowProviderID, nodeType)
}

// Get returns the cached resolution, if present.
func (m *ModelCache) Get(ctx context.Context, flowProviderID, nodeType string) (graphrun.ResolvedModel, bool) {
	raw, err := m.cache.GetString(ctx, m.key(flowProviderID, nodeType))
	if err != nil || raw == "" {
		return graphrun.ResolvedModel{}, false
	}

	var resolved graphrun.ResolvedModel
	if err := json.Unmarshal([]byte(raw), &resolved); err != nil {
		return graphrun.ResolvedModel{}, false
	}
	return resolved, true
}

// Set stores a resolution for later lookup.
func (m *ModelCache) Set(ctx context.Context, flowProviderID, nodeType string, resolved graphrun.ResolvedModel) error {
	return m.cache.Set(ctx, m.key(flowProviderID, nodeType), resolved, m.ttl)
}
