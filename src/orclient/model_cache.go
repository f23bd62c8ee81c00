package orclient

import (
	"context"
	"sync"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"golang.org/x/sync/singleflight"
)

// ModelCache provides caching for model information. Concurrent misses
// share a single fetch of the model list.
type ModelCache struct {
	cache     map[string]*cachedModel
	listCache *cachedModelList
	mu        sync.RWMutex
	ttl       time.Duration
	client    *Client
	group     singleflight.Group
}

type cachedModel struct {
	model     *aisdk.ModelInfo
	fetchedAt time.Time
}

type cachedModelList struct {
	models    []*aisdk.ModelInfo
	fetchedAt time.Time
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalEntries   int           `json:"total_entries"`
	ValidEntries   int           `json:"valid_entries"`
	ExpiredEntries int           `json:"expired_entries"`
	TTL            time.Duration `json:"ttl"`
	ListCacheValid bool          `json:"list_cache_valid"`
}

// NewModelCache creates a new model cache
func NewModelCache(client *Client, ttl time.Duration) *ModelCache {
	return &ModelCache{
		cache:  make(map[string]*cachedModel),
		ttl:    ttl,
		client: client,
	}
}

// GetModel gets a model from cache or fetches it
func (mc *ModelCache) GetModel(ctx context.Context, modelID string) (*aisdk.ModelInfo, error) {
	mc.mu.RLock()
	cached, exists := mc.cache[modelID]
	mc.mu.RUnlock()

	if exists && time.Since(cached.fetchedAt) < mc.ttl {
		return cached.model, nil
	}

	model, err := mc.client.getModelInfo(ctx, modelID)
	if err != nil {
		return nil, err
	}

	mc.mu.Lock()
	mc.cache[modelID] = &cachedModel{
		model:     model,
		fetchedAt: time.Now(),
	}
	mc.mu.Unlock()

	return model, nil
}

// GetModelList gets the model list from cache or fetches it
func (mc *ModelCache) GetModelList(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	mc.mu.RLock()
	cached := mc.listCache
	mc.mu.RUnlock()

	if cached != nil && time.Since(cached.fetchedAt) < mc.ttl {
		return cached.models, nil
	}

	v, err, _ := mc.group.Do("models", func() (any, error) {
		models, err := mc.client.listModelsUncached(ctx)
		if err != nil {
			return nil, err
		}
		mc.mu.Lock()
		mc.listCache = &cachedModelList{
			models:    models,
			fetchedAt: time.Now(),
		}
		mc.mu.Unlock()
		return models, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*aisdk.ModelInfo), nil
}

// ClearCache clears the entire cache
func (mc *ModelCache) ClearCache() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.cache = make(map[string]*cachedModel)
	mc.listCache = nil
}

// Stats returns cache statistics
func (mc *ModelCache) Stats() CacheStats {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var validEntries, expiredEntries int
	now := time.Now()

	for _, cached := range mc.cache {
		if now.Sub(cached.fetchedAt) < mc.ttl {
			validEntries++
		} else {
			expiredEntries++
		}
	}

	return CacheStats{
		TotalEntries:   len(mc.cache),
		ValidEntries:   validEntries,
		ExpiredEntries: expiredEntries,
		TTL:            mc.ttl,
		ListCacheValid: mc.listCache != nil && now.Sub(mc.listCache.fetchedAt) < mc.ttl,
	}
}

// Cache exposes the model cache.
func (c *Client) Cache() *ModelCache {
	return c.modelCache
}
