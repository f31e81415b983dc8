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

type metaDevice struct {
	meta *behavior.Metadata
}

func (d metaDevice) Ready() bool { return true }

func (d metaDevice) ParameterMetadata() (*behavior.Metadata, error) {
	return d.meta, nil
}

// testHarness bundles a service with handles on its collaborators and a
// record of emitted notifications.
type testHarness struct {
	svc           *Service
	ids           *localid.Map
	keymap        *keymap.Store
	layouts       *layout.Catalog
	notifications []Notification
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	ctx := context.Background()

	r := behavior.NewRegistry()
	r.Add("kp", metaDevice{meta: &behavior.Metadata{Sets: []behavior.Set{
		{Param1: []behavior.Value{behavior.HIDUsage{}}},
	}}})
	r.Add("mo", metaDevice{meta: &behavior.Metadata{Sets: []behavior.Set{
		{Param1: []behavior.Value{behavior.LayerIndex{}}},
	}}})
	r.Add("trans", metaDevice{meta: behavior.Empty})

	ids := localid.NewMap(r)
	require.NoError(t, localid.CRC16{}.Assign(ctx, ids))

	catalog, err := layout.NewCatalog([]*layout.Layout{
		{DisplayName: "Full", Keys: make([]layout.KeyAttrs, 6)},
		{DisplayName: "Slim", Keys: make([]layout.KeyAttrs, 4)},
	}, memsettings.New())
	require.NoError(t, err)
	require.NoError(t, catalog.AddPositionMap(0, 1, []uint32{0, 1, 2, 5}))

	km := keymap.New([]string{"base", "lower", "raise", "adjust"}, nil, 6)

	h := &testHarness{ids: ids, keymap: km, layouts: catalog}
	validator := behavior.NewValidator(r, behavior.Options{LayerCount: km.LayerCount()})
	h.svc = New(ids, validator, km, catalog, func(_ context.Context, n Notification) {
		h.notifications = append(h.notifications, n)
	})
	return h
}

func (h *testHarness) wireBinding(t *testing.T, name string, p1, p2 uint32) WireBinding {
	t.Helper()
	id := h.ids.IDForName(name)
	require.NotEqual(t, localid.Anonymous, id)
	return WireBinding{BehaviorID: uint16(id), Param1: p1, Param2: p2}
}

func TestSetLayerBinding(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	code := h.svc.SetLayerBinding(ctx, SetLayerBindingRequest{
		Layer:    1,
		Position: 5,
		Binding:  h.wireBinding(t, "mo", 2, 0),
	})
	assert.Equal(t, CodeSuccess, code)
	assert.True(t, h.keymap.HasUnsavedChanges())
	require.Len(t, h.notifications, 1)
	assert.True(t, h.notifications[0].UnsavedChanges)

	b, err := h.keymap.GetBinding(1, 5)
	require.NoError(t, err)
	assert.Equal(t, behavior.Binding{Behavior: "mo", Param1: 2}, b)
}

func TestSetLayerBindingInvalidParameters(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	// Layer 9 does not exist, so the layer-index parameter is rejected
	// before the keymap is touched.
	code := h.svc.SetLayerBinding(ctx, SetLayerBindingRequest{
		Layer:    1,
		Position: 5,
		Binding:  h.wireBinding(t, "mo", 9, 0),
	})
	assert.Equal(t, CodeInvalidParameters, code)
	assert.False(t, h.keymap.HasUnsavedChanges())
	assert.Empty(t, h.notifications)
}

func TestSetLayerBindingUnknownBehavior(t *testing.T) {
	h := newTestHarness(t)

	code := h.svc.SetLayerBinding(context.Background(), SetLayerBindingRequest{
		Binding: WireBinding{BehaviorID: 0x1234},
	})
	assert.Equal(t, CodeInvalidBehavior, code)
	assert.Empty(t, h.notifications)
}

func TestSetLayerBindingInvalidLocation(t *testing.T) {
	h := newTestHarness(t)

	code := h.svc.SetLayerBinding(context.Background(), SetLayerBindingRequest{
		Layer:    0,
		Position: 99,
		Binding:  h.wireBinding(t, "trans", 0, 0),
	})
	assert.Equal(t, CodeInvalidLocation, code)
	assert.Empty(t, h.notifications)
}

func TestCheckUnsavedChanges(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	assert.False(t, h.svc.CheckUnsavedChanges(ctx))

	// A pending layout selection alone counts as unsaved work.
	require.NoError(t, h.layouts.Select(ctx, 1))
	assert.True(t, h.svc.CheckUnsavedChanges(ctx))
}

func TestSaveChanges(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	code := h.svc.SetLayerBinding(ctx, SetLayerBindingRequest{
		Binding: h.wireBinding(t, "kp", 0x07_0004, 0),
	})
	require.Equal(t, CodeSuccess, code)
	h.notifications = nil

	require.NoError(t, h.svc.SaveChanges(ctx))
	assert.False(t, h.svc.CheckUnsavedChanges(ctx))
	require.Len(t, h.notifications, 1)
	assert.False(t, h.notifications[0].UnsavedChanges)
}

func TestDiscardChanges(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	code := h.svc.SetLayerBinding(ctx, SetLayerBindingRequest{
		Layer:   2,
		Binding: h.wireBinding(t, "trans", 0, 0),
	})
	require.Equal(t, CodeSuccess, code)
	require.NoError(t, h.layouts.Select(ctx, 1))
	h.notifications = nil

	require.NoError(t, h.svc.DiscardChanges(ctx))
	assert.False(t, h.svc.CheckUnsavedChanges(ctx))
	assert.Equal(t, 0, h.layouts.Selected())

	b, err := h.keymap.GetBinding(2, 0)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())

	require.Len(t, h.notifications, 1)
	assert.False(t, h.notifications[0].UnsavedChanges)
}

func TestSetActivePhysicalLayoutSameIndexIsNoOp(t *testing.T) {
	h := newTestHarness(t)

	payload := h.svc.SetActivePhysicalLayout(context.Background(), 0)
	assert.Empty(t, payload.Err)
	assert.Empty(t, h.notifications)
	assert.False(t, h.svc.CheckUnsavedChanges(context.Background()))
}

func TestSetActivePhysicalLayoutOutOfRange(t *testing.T) {
	h := newTestHarness(t)

	payload := h.svc.SetActivePhysicalLayout(context.Background(), 7)
	assert.Equal(t, CodeGeneric, payload.Err)
	assert.Equal(t, 0, h.layouts.Selected())
	assert.Empty(t, h.notifications)
}

func TestSetActivePhysicalLayoutMigratesAndNotifies(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	require.Equal(t, CodeSuccess, h.svc.SetLayerBinding(ctx, SetLayerBindingRequest{
		Layer:    0,
		Position: 5,
		Binding:  h.wireBinding(t, "mo", 3, 0),
	}))
	h.notifications = nil

	payload := h.svc.SetActivePhysicalLayout(ctx, 1)
	assert.Empty(t, payload.Err)
	assert.Equal(t, 1, h.layouts.Selected())

	// Slim position 3 derives from full position 5.
	b, err := h.keymap.GetBinding(0, 3)
	require.NoError(t, err)
	assert.Equal(t, behavior.Binding{Behavior: "mo", Param1: 3}, b)

	require.Len(t, h.notifications, 1)
	assert.True(t, h.notifications[0].UnsavedChanges)
}
