// Package hclconf loads the keymap and physical-layout catalog from HCL
// configuration files.
package hclconf

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/fsutil"
)

// Load parses every .hcl file reachable from the given paths (files or
// directories) and merges their blocks into one model. Block order within a
// file, and file order within a directory walk, is preserved: layer order is
// layer index order.
func Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat config path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("walk config path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	model := &Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalContext(), &root); diags.HasErrors() {
			return nil, fmt.Errorf("decode %s: %w", file, diags)
		}

		model.Layers = append(model.Layers, root.Layers...)
		model.Layouts = append(model.Layouts, root.Layouts...)
		model.PositionMaps = append(model.PositionMaps, root.PositionMaps...)
		logger.Debug("Loaded configuration file.", "file", file,
			"layers", len(root.Layers), "layouts", len(root.Layouts))
	}

	if err := validate(model); err != nil {
		return nil, err
	}

	return model, nil
}

// validate performs the structural checks that do not need the registry:
// at least one layer and one layout, and position maps referencing declared
// layouts with entry counts matching the target layout.
func validate(m *Model) error {
	if len(m.Layers) == 0 {
		return fmt.Errorf("configuration declares no keymap layers")
	}
	if len(m.Layouts) == 0 {
		return fmt.Errorf("configuration declares no physical layouts")
	}

	byName := make(map[string]*Layout, len(m.Layouts))
	for _, l := range m.Layouts {
		if _, exists := byName[l.Name]; exists {
			return fmt.Errorf("duplicate layout %q", l.Name)
		}
		if len(l.Keys) == 0 {
			return fmt.Errorf("layout %q declares no keys", l.Name)
		}
		byName[l.Name] = l
	}

	for _, pm := range m.PositionMaps {
		to, ok := byName[pm.To]
		if !ok {
			return fmt.Errorf("position_map references unknown layout %q", pm.To)
		}
		if _, ok := byName[pm.From]; !ok {
			return fmt.Errorf("position_map references unknown layout %q", pm.From)
		}
		if len(pm.Map) != len(to.Keys) {
			return fmt.Errorf("position_map %q -> %q has %d entries, layout has %d keys",
				pm.From, pm.To, len(pm.Map), len(to.Keys))
		}
	}

	return nil
}

// LayoutIndex finds a layout's catalog index by its block label.
func (m *Model) LayoutIndex(name string) (int, bool) {
	for i, l := range m.Layouts {
		if l.Name == name {
			return i, true
		}
	}
	return 0, false
}
