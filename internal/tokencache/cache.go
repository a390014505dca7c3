package tokencache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// TokenCache caches bearer tokens per account key.
// Expired entries are purged lazily on lookup.
//
//go:generate mockgen -source=cache.go -destination=../mocks/token_cache.go -package=mocks -mock_names=TokenCache=MockTokenCache
type TokenCache interface {
	// Get returns the cached token if present and not expired
	Get(key string) (string, bool)

	// Set stores a token for ttl; a non-positive ttl uses the default
	Set(key string, token string, ttl time.Duration)

	// Invalidate drops the token for key
	Invalidate(key string)

	// Clear drops every token
	Clear()

	// Stats reports cache occupancy
	Stats() Stats
}

// Stats reports cache occupancy
type Stats struct {
	Total int `json:"total"`
	Valid int `json:"valid"`
}

type entry struct {
	token     string
	expiresAt time.Time
}

type tokenCache struct {
	clock      adapter.Clock
	defaultTTL time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a TokenCache. defaultTTL <= 0 falls back to domain.DEFAULT_TOKEN_TTL.
func New(clock adapter.Clock, defaultTTL time.Duration) TokenCache {
	if defaultTTL <= 0 {
		defaultTTL = domain.DEFAULT_TOKEN_TTL
	}
	return &tokenCache{
		clock:      clock,
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry),
	}
}

func (c *tokenCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		logger.Debug("Token expired", zap.String("account", key))
		return "", false
	}

	return e.token, true
}

func (c *tokenCache) Set(key string, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = entry{token: token, expiresAt: c.clock.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *tokenCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *tokenCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *tokenCache) Stats() Stats {
	now := c.clock.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			stats.Valid++
		}
	}
	return stats
}
