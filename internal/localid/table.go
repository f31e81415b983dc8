package localid

import (
	"context"
	"fmt"
	"strconv"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/settings"
)

// settingsPrefix is the key subtree holding persisted ID records. The
// numeric identifier is the key suffix; the value is the behavior name as
// raw bytes, no terminator.
const settingsPrefix = "behavior/local_id"

// maxNameLen bounds a persisted record's payload. Anything larger is a
// corrupt or foreign record.
const maxNameLen = 64

// SettingsTable assigns counter IDs recovered from, and persisted to, the
// settings store. Previously known behaviors keep their identifiers across
// reboots; newly seen ones get the next counter value.
type SettingsTable struct {
	store settings.Store

	// largest tracks the highest identifier seen during replay, so fresh
	// assignments never collide with persisted ones.
	largest ID
}

// NewSettingsTable creates the strategy over a settings store.
func NewSettingsTable(store settings.Store) *SettingsTable {
	return &SettingsTable{store: store}
}

// Assign first replays every stored (id, name) record, then hands out fresh
// identifiers to ready behaviors the replay did not cover. Each fresh
// assignment is persisted before the next behavior is considered, so an
// identifier is never observable before its write was issued.
func (t *SettingsTable) Assign(ctx context.Context, m *Map) error {
	logger := ctxlog.FromContext(ctx)

	err := t.store.Load(ctx, settingsPrefix, func(key string, value []byte) error {
		return t.replayRecord(m, key, value)
	})
	if err != nil {
		return fmt.Errorf("replay local-id table: %w", err)
	}

	for _, r := range m.rows {
		if r.assigned || !r.entry.Device.Ready() {
			continue
		}

		t.largest++
		r.id = t.largest
		r.assigned = true

		key := fmt.Sprintf("%s/%d", settingsPrefix, r.id)
		if err := t.store.SaveOne(ctx, key, []byte(r.entry.Name)); err != nil {
			return fmt.Errorf("persist local id for %q: %w", r.entry.Name, err)
		}
		logger.Debug("Assigned new behavior local id.", "behavior", r.entry.Name, "id", r.id)
	}

	return nil
}

// replayRecord applies one stored record to the table. A malformed suffix,
// oversized payload, or unknown behavior name rejects that record without
// aborting the rest of the load.
func (t *SettingsTable) replayRecord(m *Map, key string, value []byte) error {
	n, err := strconv.ParseUint(key, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid local id suffix %q: %w", key, err)
	}

	if len(value) >= maxNameLen {
		return fmt.Errorf("oversized behavior name record (%d bytes)", len(value))
	}

	name := string(value)
	for _, r := range m.rows {
		if r.entry.Name == name {
			r.id = ID(n)
			r.assigned = true
			if r.id > t.largest {
				t.largest = r.id
			}
			return nil
		}
	}

	return fmt.Errorf("stored record names unknown behavior %q", name)
}
