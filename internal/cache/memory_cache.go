package cache

import (
	"sync"
	"time"

	"github.com/epeers/portools/internal/models"
)

// MemoryCache is an in-memory TTL cache for derived views served by the API.
// Entries may lag the pipeline by at most the TTL.
type MemoryCache struct {
	summaries map[summaryKey]summaryEntry
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
}

type summaryKey struct {
	id   uint32
	view models.ViewKind
}

type summaryEntry struct {
	doc       *models.SummaryDocument
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache. A zero ttl disables caching.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		summaries: make(map[summaryKey]summaryEntry),
		ttl:       ttl,
		now:       time.Now,
	}
}

// GetSummary retrieves a cached view if fresh
func (c *MemoryCache) GetSummary(id uint32, view models.ViewKind) (*models.SummaryDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.summaries[summaryKey{id: id, view: view}]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.doc, true
}

// SetSummary caches a view
func (c *MemoryCache) SetSummary(doc *models.SummaryDocument) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summaries[summaryKey{id: doc.ID, view: doc.View}] = summaryEntry{
		doc:       doc,
		fetchedAt: c.now(),
	}
}

// InvalidatePortfolio removes every cached view of a portfolio
func (c *MemoryCache) InvalidatePortfolio(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, view := range models.ViewKinds {
		delete(c.summaries, summaryKey{id: id, view: view})
	}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.summaries = make(map[summaryKey]summaryEntry)
	c.mu.Unlock()
}
