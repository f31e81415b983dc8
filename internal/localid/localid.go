package localid

import (
	"context"
	"fmt"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/settings"
)

// ID is a compact numeric alias for a behavior name.
type ID uint16

// Anonymous is the "no id" sentinel returned for unknown names.
const Anonymous ID = 0xFFFF

// Scheme names an assignment strategy.
type Scheme string

const (
	// SchemeCRC16 derives every ID from a checksum of the behavior name.
	SchemeCRC16 Scheme = "crc16"
	// SchemeSettingsTable assigns counter IDs persisted in the settings
	// store.
	SchemeSettingsTable Scheme = "settings-table"
)

// Assigner populates a Map during startup. Implementations are not
// re-entered after startup completes.
type Assigner interface {
	Assign(ctx context.Context, m *Map) error
}

// NewAssigner resolves a scheme name into its strategy. An unknown scheme is
// a fatal configuration error: the caller must not start serving without a
// working ID mechanism.
func NewAssigner(scheme Scheme, store settings.Store) (Assigner, error) {
	switch scheme {
	case SchemeCRC16:
		return &CRC16{}, nil
	case SchemeSettingsTable:
		return &SettingsTable{store: store}, nil
	default:
		return nil, fmt.Errorf("unknown local-id scheme %q", scheme)
	}
}

// row binds one registry entry to its assigned identifier.
type row struct {
	entry    *behavior.Entry
	id       ID
	assigned bool
}

// Map is the static identifier table: one row per registry entry, in
// registration order. Lookups are linear scans — the table holds tens of
// entries at most.
type Map struct {
	rows []*row
}

// NewMap builds an unassigned table over the registry.
func NewMap(registry *behavior.Registry) *Map {
	entries := registry.Entries()
	m := &Map{rows: make([]*row, 0, len(entries))}
	for _, e := range entries {
		m.rows = append(m.rows, &row{entry: e})
	}
	return m
}

// IDForName returns the identifier assigned to a ready behavior, or
// Anonymous when the name is unknown, not ready, or unassigned.
func (m *Map) IDForName(name string) ID {
	if name == "" {
		return Anonymous
	}
	for _, r := range m.rows {
		if r.assigned && r.entry.Device.Ready() && r.entry.Name == name {
			return r.id
		}
	}
	return Anonymous
}

// NameForID returns the behavior name holding an identifier, if any.
func (m *Map) NameForID(id ID) (string, bool) {
	for _, r := range m.rows {
		if r.assigned && r.entry.Device.Ready() && r.id == id {
			return r.entry.Name, true
		}
	}
	return "", false
}
