package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/table"
)

// Hash identifies a set of inputs by content.
func Hash(events, portfolio, premium table.Table) string {
	h := sha256.New()
	events.WriteHash(h)
	portfolio.WriteHash(h)
	premium.WriteHash(h)
	return hex.EncodeToString(h.Sum(nil))
}

// Cache memoizes Prepare by input hash. Entries are never evicted; new inputs
// add a new entry. Cached datasets are shared and must be treated as read-only.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.Dataset
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*models.Dataset),
	}
}

// Prepare returns the cached dataset for the inputs, computing it on first use.
// The bool reports a cache hit.
func (c *Cache) Prepare(events, portfolio, premium table.Table) (*models.Dataset, string, bool) {
	key := Hash(events, portfolio, premium)
	if ds, ok := c.Get(key); ok {
		return ds, key, true
	}

	ds := Prepare(events, portfolio, premium)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, key, true
	}
	c.entries[key] = ds
	return ds, key, false
}

func (c *Cache) Get(key string) (*models.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	return ds, ok
}

// Put stores a dataset computed elsewhere, such as one restored from disk.
func (c *Cache) Put(key string, ds *models.Dataset) {
	c.mu.Lock()
	c.entries[key] = ds
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
