// Package layout models the selectable physical key layouts and the
// correspondence maps between them.
//
// The catalog is built once from configuration. Selecting a layout is a
// staged edit like a keymap change: the new index only becomes durable
// through SaveSelected, and RevertSelected restores the persisted one.
package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/settings"
)

// NoPosition is the correspondence-map sentinel for "this new position has
// no old counterpart".
const NoPosition = ^uint32(0)

// selectedKey is where the committed layout selection is persisted.
const selectedKey = "physical_layouts/selected"

// ErrNoPositionMap means no correspondence between two layouts is known.
var ErrNoPositionMap = errors.New("no position map between layouts")

// KeyAttrs describes one key's physical placement: position and size in
// layout units, rotation in centidegrees around (RX, RY).
type KeyAttrs struct {
	Width  int32
	Height int32
	X      int32
	Y      int32
	R      int32
	RX     int32
	RY     int32
}

// Layout is one selectable physical arrangement.
type Layout struct {
	DisplayName string
	Keys        []KeyAttrs
}

// Catalog holds the layouts, the declared position maps between them, and
// the current selection.
type Catalog struct {
	layouts []*Layout
	maps    map[[2]int][]uint32

	store    settings.Store
	selected int
	saved    int
}

// NewCatalog builds a catalog over the given layouts. Position maps are
// registered afterwards with AddPositionMap; the selection starts at 0
// until LoadSelection replays a persisted one.
func NewCatalog(layouts []*Layout, store settings.Store) (*Catalog, error) {
	if len(layouts) == 0 {
		return nil, errors.New("layout catalog must not be empty")
	}
	return &Catalog{
		layouts: layouts,
		maps:    make(map[[2]int][]uint32),
		store:   store,
	}, nil
}

// AddPositionMap declares the correspondence from layout `from` to layout
// `to`: entry i holds the from-layout position that to-layout position i
// derives from, or NoPosition. The inverse direction is derived
// automatically when not declared explicitly.
func (c *Catalog) AddPositionMap(from, to int, m []uint32) error {
	if from < 0 || from >= len(c.layouts) || to < 0 || to >= len(c.layouts) {
		return fmt.Errorf("position map references unknown layout (%d -> %d)", from, to)
	}
	if len(m) != len(c.layouts[to].Keys) {
		return fmt.Errorf("position map %d -> %d has %d entries, layout has %d keys",
			from, to, len(m), len(c.layouts[to].Keys))
	}
	c.maps[[2]int{from, to}] = append([]uint32(nil), m...)
	return nil
}

// List returns the layouts in catalog order. Callers must not mutate it.
func (c *Catalog) List() []*Layout {
	return c.layouts
}

// Selected returns the index of the currently selected layout.
func (c *Catalog) Selected() int {
	return c.selected
}

// Select stages a new selection. The change is not durable until
// SaveSelected commits it.
func (c *Catalog) Select(ctx context.Context, index int) error {
	if index < 0 || index >= len(c.layouts) {
		return fmt.Errorf("layout index %d out of range [0, %d)", index, len(c.layouts))
	}
	c.selected = index
	ctxlog.FromContext(ctx).Debug("Physical layout selected.", "index", index, "name", c.layouts[index].DisplayName)
	return nil
}

// PositionMap returns the correspondence array from old to new, indexed by
// new-layout position. Falls back to the inverse of a declared new-to-old
// map, then to the identity when both layouts have the same key count.
func (c *Catalog) PositionMap(old, new int) ([]uint32, error) {
	if old < 0 || old >= len(c.layouts) || new < 0 || new >= len(c.layouts) {
		return nil, fmt.Errorf("layout index out of range (%d -> %d)", old, new)
	}

	if m, ok := c.maps[[2]int{old, new}]; ok {
		return m, nil
	}

	if m, ok := c.maps[[2]int{new, old}]; ok {
		return invert(m, len(c.layouts[new].Keys)), nil
	}

	if len(c.layouts[old].Keys) == len(c.layouts[new].Keys) {
		m := make([]uint32, len(c.layouts[new].Keys))
		for i := range m {
			m[i] = uint32(i)
		}
		return m, nil
	}

	return nil, fmt.Errorf("%w: %d -> %d", ErrNoPositionMap, old, new)
}

// invert flips an old-indexed map into a new-indexed one of length n.
// Positions nothing maps to become NoPosition.
func invert(m []uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = NoPosition
	}
	for oldPos, newPos := range m {
		if newPos != NoPosition && int(newPos) < n {
			out[newPos] = uint32(oldPos)
		}
	}
	return out
}

// HasUnsavedSelection reports whether the staged selection differs from the
// persisted one.
func (c *Catalog) HasUnsavedSelection() bool {
	return c.selected != c.saved
}

// SaveSelected persists the staged selection.
func (c *Catalog) SaveSelected(ctx context.Context) error {
	if err := c.store.SaveOne(ctx, selectedKey, []byte{byte(c.selected)}); err != nil {
		return fmt.Errorf("persist layout selection: %w", err)
	}
	c.saved = c.selected
	return nil
}

// RevertSelected restores the staged selection to the persisted one.
func (c *Catalog) RevertSelected(ctx context.Context) error {
	c.selected = c.saved
	return nil
}

// LoadSelection replays the persisted selection, if any. Runs once at
// startup before the catalog is handed to request handlers.
func (c *Catalog) LoadSelection(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	err := c.store.Load(ctx, "physical_layouts", func(key string, value []byte) error {
		if key != "selected" {
			return nil
		}
		if len(value) != 1 {
			return fmt.Errorf("malformed layout selection record (%d bytes)", len(value))
		}
		index := int(value[0])
		if index >= len(c.layouts) {
			return fmt.Errorf("persisted layout index %d out of range", index)
		}
		c.selected = index
		c.saved = index
		logger.Debug("Restored persisted layout selection.", "index", index)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load layout selection: %w", err)
	}

	return nil
}

// MaxKeyCount returns the largest key count across the catalog; the keymap
// is sized to it so any layout fits.
func (c *Catalog) MaxKeyCount() int {
	max := 0
	for _, l := range c.layouts {
		if len(l.Keys) > max {
			max = len(l.Keys)
		}
	}
	return max
}
