package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// FileCache is a SentCache persisted as a JSON file, so reminders already
// delivered are not repeated after a restart. Every Mark rewrites the file
// atomically.
type FileCache struct {
	path string

	mu   sync.RWMutex
	keys map[string]struct{}
}

type fileSnapshot struct {
	Keys []string `json:"keys"`
}

// OpenFileCache loads path (a missing file is an empty cache) and drops
// reminder keys dated before today.
func OpenFileCache(path string, today time.Time) (*FileCache, error) {
	c := &FileCache{path: path, keys: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sent cache dir: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read sent cache %s: %w", path, err)
	default:
		var snap fileSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode sent cache %s: %w", path, err)
		}
		for _, k := range snap.Keys {
			c.keys[k] = struct{}{}
		}
	}

	if _, err := c.Prune(today); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.keys[key]
	return ok
}

// Mark records key in memory and then persists. On a write error the key
// stays marked in memory.
func (c *FileCache) Mark(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return nil
	}
	c.keys[key] = struct{}{}
	return c.persistLocked()
}

func (c *FileCache) Prune(today time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := pruneKeys(c.keys, today)
	if removed == 0 {
		return 0, nil
	}
	return removed, c.persistLocked()
}

func (c *FileCache) persistLocked() error {
	snap := fileSnapshot{Keys: make([]string, 0, len(c.keys))}
	for k := range c.keys {
		snap.Keys = append(snap.Keys, k)
	}
	sort.Strings(snap.Keys)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sent cache: %w", err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write sent cache %s: %w", c.path, err)
	}
	return nil
}
