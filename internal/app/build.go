package app

import (
	"context"
	"fmt"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/hclconf"
	"github.com/keebforge/keycore/internal/keymap"
	"github.com/keebforge/keycore/internal/layout"
	"github.com/keebforge/keycore/internal/settings"
)

// buildCatalog converts the configuration model's layout blocks into the
// runtime catalog and replays any persisted layout selection.
func buildCatalog(ctx context.Context, model *hclconf.Model, store settings.Store) (*layout.Catalog, error) {
	layouts := make([]*layout.Layout, 0, len(model.Layouts))
	for _, def := range model.Layouts {
		l := &layout.Layout{DisplayName: def.DisplayName, Keys: make([]layout.KeyAttrs, 0, len(def.Keys))}
		if l.DisplayName == "" {
			l.DisplayName = def.Name
		}
		for _, k := range def.Keys {
			l.Keys = append(l.Keys, layout.KeyAttrs{
				Width: k.Width, Height: k.Height,
				X: k.X, Y: k.Y,
				R: k.R, RX: k.RX, RY: k.RY,
			})
		}
		layouts = append(layouts, l)
	}

	catalog, err := layout.NewCatalog(layouts, store)
	if err != nil {
		return nil, fmt.Errorf("build layout catalog: %w", err)
	}

	for _, pm := range model.PositionMaps {
		from, ok := model.LayoutIndex(pm.From)
		if !ok {
			return nil, fmt.Errorf("position_map references unknown layout %q", pm.From)
		}
		to, ok := model.LayoutIndex(pm.To)
		if !ok {
			return nil, fmt.Errorf("position_map references unknown layout %q", pm.To)
		}

		m := make([]uint32, len(pm.Map))
		for i, v := range pm.Map {
			if v < 0 {
				m[i] = layout.NoPosition
			} else {
				m[i] = uint32(v)
			}
		}
		if err := catalog.AddPositionMap(from, to, m); err != nil {
			return nil, err
		}
	}

	if err := catalog.LoadSelection(ctx); err != nil {
		return nil, err
	}

	return catalog, nil
}

// buildKeymap converts the configuration model's layer blocks into the
// runtime keymap. Bindings that fail validation are kept — the keymap must
// mirror what the user wrote — but each is logged so misconfigurations
// surface at startup rather than when a key fires.
func buildKeymap(ctx context.Context, model *hclconf.Model, validator *behavior.Validator, capacity int) *keymap.Store {
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(model.Layers))
	layers := make([][]behavior.Binding, 0, len(model.Layers))

	for _, def := range model.Layers {
		names = append(names, def.Name)

		row := make([]behavior.Binding, 0, len(def.Bindings))
		for pos, b := range def.Bindings {
			binding := behavior.Binding{Behavior: b.Behavior, Param1: b.Param1, Param2: b.Param2}
			if err := validator.ValidateBinding(ctx, binding); err != nil {
				logger.Warn("Configured binding failed validation.",
					"layer", def.Name, "position", pos, "behavior", b.Behavior, "error", err)
			}
			row = append(row, binding)
		}
		layers = append(layers, row)
	}

	return keymap.New(names, layers, capacity)
}
