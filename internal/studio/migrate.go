package studio

import (
	"context"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/layout"
)

// migrateKeymap re-derives every keymap layer for the newly selected layout
// from the previous one. Positions with a valid old correspondence copy
// that binding; positions without one are zeroed.
//
// Each layer's replacement row is computed completely before any write: the
// correspondence need not be a permutation, so writing as we read could
// overwrite an old cell that a later new position still derives from.
//
// Combos and macros keyed to absolute positions are not migrated; that is a
// known limitation of layout switching.
func (s *Service) migrateKeymap(ctx context.Context, old int) {
	logger := ctxlog.FromContext(ctx)

	posMap, err := s.layouts.PositionMap(old, s.layouts.Selected())
	if err != nil {
		logger.Warn("No position map for layout migration, keymap left untouched.",
			"old", old, "new", s.layouts.Selected(), "error", err)
		return
	}

	for l := 0; l < s.keymap.LayerCount(); l++ {
		row := make([]behavior.Binding, len(posMap))

		for pos, oldPos := range posMap {
			if oldPos == layout.NoPosition {
				continue
			}
			b, err := s.keymap.GetBinding(l, int(oldPos))
			if err != nil {
				continue
			}
			row[pos] = b
		}

		for pos, b := range row {
			if err := s.keymap.SetBinding(l, pos, b); err != nil {
				logger.Warn("Failed writing migrated binding.", "layer", l, "position", pos, "error", err)
			}
		}
	}
}
