package studio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/keymap"
	"github.com/keebforge/keycore/internal/layout"
	"github.com/keebforge/keycore/internal/localid"
	"github.com/keebforge/keycore/internal/memsettings"
)

// newMigrationHarness builds a service over two equally sized layouts whose
// correspondence is configurable per test.
func newMigrationHarness(t *testing.T, keys int, posMap []uint32) *testHarness {
	t.Helper()
	ctx := context.Background()

	r := behavior.NewRegistry()
	r.Add("kp", metaDevice{meta: &behavior.Metadata{Sets: []behavior.Set{
		{Param1: []behavior.Value{behavior.HIDUsage{}}},
	}}})

	ids := localid.NewMap(r)
	require.NoError(t, localid.CRC16{}.Assign(ctx, ids))

	catalog, err := layout.NewCatalog([]*layout.Layout{
		{DisplayName: "A", Keys: make([]layout.KeyAttrs, keys)},
		{DisplayName: "B", Keys: make([]layout.KeyAttrs, keys)},
	}, memsettings.New())
	require.NoError(t, err)
	require.NoError(t, catalog.AddPositionMap(0, 1, posMap))

	km := keymap.New([]string{"base", "lower"}, nil, keys)

	h := &testHarness{ids: ids, keymap: km, layouts: catalog}
	validator := behavior.NewValidator(r, behavior.Options{LayerCount: km.LayerCount()})
	h.svc = New(ids, validator, km, catalog, func(_ context.Context, n Notification) {
		h.notifications = append(h.notifications, n)
	})
	return h
}

func kpBinding(id uint32) behavior.Binding {
	return behavior.Binding{Behavior: "kp", Param1: id}
}

func seedLayer(t *testing.T, km *keymap.Store, layer int, bindings ...behavior.Binding) {
	t.Helper()
	for pos, b := range bindings {
		require.NoError(t, km.SetBinding(layer, pos, b))
	}
}

func TestMigrationAppliesPermutation(t *testing.T) {
	ctx := context.Background()
	h := newMigrationHarness(t, 3, []uint32{2, 0, 1})
	seedLayer(t, h.keymap, 0, kpBinding(0x070004), kpBinding(0x070005), kpBinding(0x070006))

	payload := h.svc.SetActivePhysicalLayout(ctx, 1)
	require.Empty(t, payload.Err)

	for pos, want := range []uint32{0x070006, 0x070004, 0x070005} {
		b, err := h.keymap.GetBinding(0, pos)
		require.NoError(t, err)
		assert.Equal(t, kpBinding(want), b, "position %d", pos)
	}
}

func TestMigrationDuplicateCorrespondenceCopiesBeforeOverwriting(t *testing.T) {
	ctx := context.Background()

	// Positions 0 and 1 of the new layout both derive from old position 0.
	// The replacement row must be read out completely before any write, or
	// the second copy would see the already overwritten cell.
	h := newMigrationHarness(t, 3, []uint32{0, 0, 1})
	seedLayer(t, h.keymap, 0, kpBinding(0x070004), kpBinding(0x070005), kpBinding(0x070006))

	payload := h.svc.SetActivePhysicalLayout(ctx, 1)
	require.Empty(t, payload.Err)

	for pos, want := range []uint32{0x070004, 0x070004, 0x070005} {
		b, err := h.keymap.GetBinding(0, pos)
		require.NoError(t, err)
		assert.Equal(t, kpBinding(want), b, "position %d", pos)
	}
}

func TestMigrationZeroesUnmappedPositions(t *testing.T) {
	ctx := context.Background()
	h := newMigrationHarness(t, 3, []uint32{1, layout.NoPosition, 2})
	seedLayer(t, h.keymap, 0, kpBinding(0x070004), kpBinding(0x070005), kpBinding(0x070006))

	payload := h.svc.SetActivePhysicalLayout(ctx, 1)
	require.Empty(t, payload.Err)

	b, err := h.keymap.GetBinding(0, 1)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}

func TestMigrationCoversEveryLayer(t *testing.T) {
	ctx := context.Background()
	h := newMigrationHarness(t, 2, []uint32{1, 0})
	seedLayer(t, h.keymap, 0, kpBinding(0x070004), kpBinding(0x070005))
	seedLayer(t, h.keymap, 1, kpBinding(0x070010), kpBinding(0x070011))

	payload := h.svc.SetActivePhysicalLayout(ctx, 1)
	require.Empty(t, payload.Err)

	b, err := h.keymap.GetBinding(1, 0)
	require.NoError(t, err)
	assert.Equal(t, kpBinding(0x070011), b)
}

func TestMigrationWithoutPositionMapLeavesKeymapAlone(t *testing.T) {
	ctx := context.Background()

	// Different key counts and no declared map: selection still succeeds,
	// but the keymap cannot be migrated and stays as it was.
	r := behavior.NewRegistry()
	ids := localid.NewMap(r)

	catalog, err := layout.NewCatalog([]*layout.Layout{
		{DisplayName: "A", Keys: make([]layout.KeyAttrs, 3)},
		{DisplayName: "B", Keys: make([]layout.KeyAttrs, 2)},
	}, memsettings.New())
	require.NoError(t, err)

	km := keymap.New([]string{"base"}, [][]behavior.Binding{{kpBinding(0x070004)}}, 3)
	svc := New(ids, behavior.NewValidator(r, behavior.Options{}), km, catalog, nil)

	payload := svc.SetActivePhysicalLayout(ctx, 1)
	require.Empty(t, payload.Err)
	assert.Equal(t, 1, catalog.Selected())

	b, err := km.GetBinding(0, 0)
	require.NoError(t, err)
	assert.Equal(t, kpBinding(0x070004), b)
}
