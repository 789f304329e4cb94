// Package cache holds the in-process service catalog cache: an "all
// services" snapshot, per-category snapshots, and a bounded search-result
// region, all stamped with one shared staleness clock.
package cache

import (
	"sync"
	"time"

	"github.com/carmedic/backend/models"
)

const (
	defaultTTL      = time.Hour
	searchCacheMax  = 100
	searchEvictFrac = 0.2
)

// Catalog caches service lookups with manual invalidation on writes.
// All three regions share a single lastUpdated clock, so filling any region
// extends the apparent freshness of the others until the TTL lapses.
type Catalog struct {
	mu sync.Mutex

	allServices      []models.Service
	categoryServices map[string][]models.Service
	searchResults    map[string][]models.Service
	searchKeys       []string // insertion order, for eviction

	lastUpdated time.Time
	ttl         time.Duration
}

func New() *Catalog {
	return &Catalog{
		categoryServices: make(map[string][]models.Service),
		searchResults:    make(map[string][]models.Service),
		ttl:              defaultTTL,
	}
}

func (c *Catalog) fresh() bool {
	return !c.lastUpdated.IsZero() && time.Since(c.lastUpdated) < c.ttl
}

// All returns the cached full-catalog snapshot if it is still fresh.
func (c *Catalog) All() ([]models.Service, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() && c.allServices != nil {
		return c.allServices, true
	}
	return nil, false
}

// SetAll stores the full-catalog snapshot and refreshes the shared clock.
func (c *Catalog) SetAll(services []models.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allServices = services
	c.lastUpdated = time.Now()
}

// Category returns the cached snapshot for one category if still fresh.
func (c *Catalog) Category(category string) ([]models.Service, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if services, ok := c.categoryServices[category]; ok && c.fresh() {
		return services, true
	}
	return nil, false
}

// SetCategory stores a category snapshot and refreshes the shared clock.
func (c *Catalog) SetCategory(category string, services []models.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryServices[category] = services
	c.lastUpdated = time.Now()
}

// Search returns a cached search result if still fresh.
func (c *Catalog) Search(key string) ([]models.Service, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if services, ok := c.searchResults[key]; ok && c.fresh() {
		return services, true
	}
	return nil, false
}

// SetSearch stores a search result. When the region exceeds its capacity
// the oldest fifth of entries is evicted by insertion order; entries are
// never reordered on hit.
func (c *Catalog) SetSearch(key string, services []models.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.searchResults[key]; !exists {
		c.searchKeys = append(c.searchKeys, key)
	}
	c.searchResults[key] = services

	if len(c.searchKeys) > searchCacheMax {
		evictF := float64(searchCacheMax) * searchEvictFrac
		evict := int(evictF + 0.5)
		for _, old := range c.searchKeys[:evict] {
			delete(c.searchResults, old)
		}
		c.searchKeys = append([]string(nil), c.searchKeys[evict:]...)
	}

	c.lastUpdated = time.Now()
}

// Invalidate drops every region. Catalog writes call this unconditionally.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allServices = nil
	c.categoryServices = make(map[string][]models.Service)
	c.searchResults = make(map[string][]models.Service)
	c.searchKeys = nil
	c.lastUpdated = time.Time{}
}
