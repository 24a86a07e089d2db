package yields

import (
	"sync"
	"time"
)

// Cache holds the most recent yields snapshot. Refreshes replace the whole
// snapshot; readers get copies.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Set(yields []ProtocolYield) {
	copied := make([]ProtocolYield, len(yields))
	copy(copied, yields)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{Yields: copied, UpdatedAt: time.Now().UTC()}
}

func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]ProtocolYield, len(c.snap.Yields))
	copy(copied, c.snap.Yields)
	return Snapshot{Yields: copied, UpdatedAt: c.snap.UpdatedAt}
}
