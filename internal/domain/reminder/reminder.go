// internal/domain/reminder/reminder.go
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key identifies one reminder: at most one is dispatched per distinct Key.
type Key struct {
	Phone      string
	CaseID     string
	TargetDate string // YYYY-MM-DD
	Offset     int    // Days before the hearing
}

// String renders the key as phone|case|date|offset.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.Phone, k.CaseID, k.TargetDate, k.Offset)
}

// ParseKey is the inverse of Key.String. The phone is the only free-form
// field, so it is taken as everything before the last three separators.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 4 {
		return Key{}, fmt.Errorf("malformed reminder key %q", s)
	}
	n := len(parts)
	offset, err := strconv.Atoi(parts[n-1])
	if err != nil {
		return Key{}, fmt.Errorf("malformed offset in reminder key %q: %w", s, err)
	}
	return Key{
		Phone:      strings.Join(parts[:n-3], "|"),
		CaseID:     parts[n-3],
		TargetDate: parts[n-2],
		Offset:     offset,
	}, nil
}

// SentCache records which keys were already delivered.
// Implementations must be safe for concurrent use.
type SentCache interface {
	Contains(key string) bool
	// Mark records key as delivered. An error means the mark may not have
	// been persisted; the in-process view still counts it as delivered.
	Mark(key string) error
}

// Pruner is implemented by caches that can drop keys no longer selectable.
type Pruner interface {
	// Prune removes reminder keys whose target date is before today.
	Prune(today time.Time) (int, error)
}
