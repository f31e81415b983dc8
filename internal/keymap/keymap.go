// Package keymap holds the runtime keymap state: a fixed number of layers by
// a fixed number of key positions, each cell one binding.
//
// Edits land on a working copy and are only made durable by Save; Discard
// reverts to the last saved state. The store tracks a dirty flag so the
// remote-configuration service can report unsaved changes.
//
// Request handlers execute one at a time on a single worker, so the store
// performs no internal locking.
package keymap

import (
	"context"
	"errors"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/ctxlog"
)

// ErrInvalidLocation means a layer or position index is out of range.
var ErrInvalidLocation = errors.New("invalid keymap location")

// Store is the in-memory keymap with staged edits.
type Store struct {
	capacity int
	names    []string
	working  [][]behavior.Binding
	saved    [][]behavior.Binding
	dirty    bool
}

// New builds a store from initial layer contents. The layer count is the
// larger of the name and content counts, so a named layer without initial
// bindings still exists. Every layer row is padded to capacity, the maximum
// key count any selectable layout needs; positions beyond the active
// layout's key count simply hold empty bindings.
func New(names []string, layers [][]behavior.Binding, capacity int) *Store {
	count := len(layers)
	if len(names) > count {
		count = len(names)
	}

	s := &Store{
		capacity: capacity,
		names:    append([]string(nil), names...),
		working:  make([][]behavior.Binding, count),
		saved:    make([][]behavior.Binding, count),
	}

	for i := range s.working {
		row := make([]behavior.Binding, capacity)
		if i < len(layers) {
			copy(row, layers[i])
		}
		s.working[i] = row
		s.saved[i] = append([]behavior.Binding(nil), row...)
	}

	return s
}

// LayerCount returns the fixed number of layers.
func (s *Store) LayerCount() int {
	return len(s.working)
}

// KeyCount returns the fixed number of key positions per layer.
func (s *Store) KeyCount() int {
	return s.capacity
}

// LayerName returns a layer's display name, if one was configured.
func (s *Store) LayerName(layer int) (string, bool) {
	if layer < 0 || layer >= len(s.names) || s.names[layer] == "" {
		return "", false
	}
	return s.names[layer], true
}

// GetBinding returns the working binding at a cell.
func (s *Store) GetBinding(layer, position int) (behavior.Binding, error) {
	if !s.inRange(layer, position) {
		return behavior.Binding{}, ErrInvalidLocation
	}
	return s.working[layer][position], nil
}

// SetBinding replaces the working binding at a cell and marks the store
// dirty. The caller validates the binding itself; only the location is
// checked here.
func (s *Store) SetBinding(layer, position int, b behavior.Binding) error {
	if !s.inRange(layer, position) {
		return ErrInvalidLocation
	}
	s.working[layer][position] = b
	s.dirty = true
	return nil
}

// HasUnsavedChanges reports whether the working copy differs from the last
// saved state.
func (s *Store) HasUnsavedChanges() bool {
	return s.dirty
}

// Save commits the working copy.
func (s *Store) Save(ctx context.Context) error {
	for i, row := range s.working {
		copy(s.saved[i], row)
	}
	s.dirty = false
	ctxlog.FromContext(ctx).Debug("Keymap changes saved.", "layers", len(s.working))
	return nil
}

// Discard reverts the working copy to the last saved state.
func (s *Store) Discard(ctx context.Context) error {
	for i, row := range s.saved {
		copy(s.working[i], row)
	}
	s.dirty = false
	ctxlog.FromContext(ctx).Debug("Keymap changes discarded.")
	return nil
}

func (s *Store) inRange(layer, position int) bool {
	return layer >= 0 && layer < len(s.working) && position >= 0 && position < s.capacity
}
