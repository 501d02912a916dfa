package cache

import (
	"github.com/maypok86/otter/v2"
)

// FieldID is a cached custom field lookup. Found is false for a remembered
// "not found" result.
type FieldID struct {
	ID    string
	Found bool
}

// FieldIDCache keeps resolved custom field ids for the life of the process.
// Entries never expire; a field renamed or created in the CRM after startup
// is only picked up after a restart.
type FieldIDCache struct {
	cache *otter.Cache[string, FieldID]
}

func NewFieldIDCache() *FieldIDCache {
	return &FieldIDCache{
		cache: otter.Must(&otter.Options[string, FieldID]{
			MaximumSize:     64,
			InitialCapacity: 4,
		}),
	}
}

func (c *FieldIDCache) Get(name string) (FieldID, bool) {
	return c.cache.GetIfPresent(name)
}

func (c *FieldIDCache) Set(name string, id FieldID) {
	c.cache.Set(name, id)
}

func (c *FieldIDCache) Len() int {
	return c.cache.EstimatedSize()
}
