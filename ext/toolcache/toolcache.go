// Package toolcache caches successful results of read-only tools in an LRU.
package toolcache

import (
	"context"
	"encoding/json"
	"maps"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

const (
	defaultSize = 256
	defaultTTL  = 5 * time.Minute
)

// MetaCached is the metadata field set to true on results served from cache.
const MetaCached = "cached"

// Config configures the cache. Zero values fall back to defaults.
type Config struct {
	// Size is the maximum number of cached results across all tools.
	Size int
	// TTL is how long a cached result remains valid.
	TTL time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

type entry struct {
	result   agenttool.ToolResult
	storedAt time.Time
}

// Cache is shared by every tool it wraps; keys include the tool name.
type Cache struct {
	lru *lru.Cache[string, entry]
	ttl time.Duration
	now func() time.Time
}

// New creates a cache.
func New(cfg Config) (*Cache, error) {
	if cfg.Size <= 0 {
		cfg.Size = defaultSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	l, err := lru.New[string, entry](cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: cfg.TTL, now: cfg.Now}, nil
}

// Middleware returns a middleware caching tools whose ReadOnly() is true.
// Other tools are returned unchanged. JSON-shaped data (maps and []any) is
// copied on store and on every hit; other values are shared between hits and
// must be treated as read-only.
func (c *Cache) Middleware() agenttool.Middleware {
	return func(next agenttool.Tool) agenttool.Tool {
		if meta, ok := next.(agenttool.ToolMetadata); !ok || !meta.ReadOnly() {
			return next
		}
		return &cachedTool{Base: agenttool.Base{Next: next}, cache: c}
	}
}

// Len returns the number of cached results, including expired ones not yet evicted.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every cached result.
func (c *Cache) Purge() { c.lru.Purge() }

type cachedTool struct {
	agenttool.Base
	cache *Cache
}

func (t *cachedTool) Execute(ctx context.Context, params map[string]any) agenttool.ToolResult {
	key, ok := cacheKey(t.Name(), params)
	if !ok {
		return t.Next.Execute(ctx, params)
	}
	if e, hit := t.cache.lru.Get(key); hit {
		if t.cache.now().Sub(e.storedAt) < t.cache.ttl {
			res := e.result
			res.Data = agenttool.CloneValue(res.Data)
			res.Metadata.Fields = maps.Clone(res.Metadata.Fields)
			res.Metadata.Set(MetaCached, true)
			return res
		}
		t.cache.lru.Remove(key)
	}
	res := t.Next.Execute(ctx, params)
	if res.Success {
		stored := res
		stored.Data = agenttool.CloneValue(res.Data)
		stored.Metadata.Fields = maps.Clone(res.Metadata.Fields)
		t.cache.lru.Add(key, entry{result: stored, storedAt: t.cache.now()})
	}
	return res
}

// cacheKey is the tool name plus the arguments as JSON; encoding/json sorts
// map keys at every level, so equal arguments give equal keys.
func cacheKey(name string, params map[string]any) (string, bool) {
	if len(params) == 0 {
		return name + ":{}", true
	}
	b, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	return name + ":" + string(b), true
}
