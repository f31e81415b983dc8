// Package memsettings provides an ephemeral, thread-safe, in-memory
// implementation of the settings.Store interface. It is suitable for tests
// and for volatile runs where persisted identifiers are not required.
package memsettings

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/settings"
)

// Store keeps records in a plain map. A mutex rather than sync.Map because
// Load needs a stable, sorted snapshot of the key space.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates a new, empty in-memory settings store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Load replays all records under prefix in ascending key order.
func (s *Store) Load(ctx context.Context, prefix string, fn settings.LoadFunc) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		if strings.HasPrefix(k, prefix+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	type record struct {
		key   string
		value []byte
	}
	snapshot := make([]record, 0, len(keys))
	for _, k := range keys {
		snapshot = append(snapshot, record{key: k, value: s.records[k]})
	}
	s.mu.RUnlock()

	logger := ctxlog.FromContext(ctx)
	for _, rec := range snapshot {
		if err := fn(strings.TrimPrefix(rec.key, prefix+"/"), rec.value); err != nil {
			logger.Warn("Stored record rejected during replay.", "key", rec.key, "error", err)
		}
	}

	return nil
}

// SaveOne stores a copy of the value under key.
func (s *Store) SaveOne(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = append([]byte(nil), value...)
	return nil
}

// Len reports the number of stored records. Primarily for tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
