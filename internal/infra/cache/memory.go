package cache

import (
	"sync"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"
	"hearing_reminder_bot/internal/domain/reminder"
)

// MemoryCache is a process-local SentCache. Its contents die with the process.
type MemoryCache struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{keys: make(map[string]struct{})}
}

func (c *MemoryCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.keys[key]
	return ok
}

func (c *MemoryCache) Mark(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = struct{}{}
	return nil
}

// Len returns the number of stored keys.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// Prune drops reminder keys dated before today. Keys that are not reminder
// keys are kept.
func (c *MemoryCache) Prune(today time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pruneKeys(c.keys, today), nil
}

func pruneKeys(keys map[string]struct{}, today time.Time) int {
	cutoff := hearing.FormatDate(hearing.Today(today))
	removed := 0
	for k := range keys {
		rk, err := reminder.ParseKey(k)
		if err != nil {
			continue
		}
		if rk.TargetDate < cutoff {
			delete(keys, k)
			removed++
		}
	}
	return removed
}
