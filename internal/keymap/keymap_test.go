package keymap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebforge/keycore/internal/behavior"
)

func newTestStore() *Store {
	return New(
		[]string{"base", "", "nav", "sym"},
		[][]behavior.Binding{
			{{Behavior: "kp", Param1: 4}, {Behavior: "kp", Param1: 5}},
			{},
			{},
			{},
		},
		6,
	)
}

func TestDimensions(t *testing.T) {
	s := newTestStore()

	assert.Equal(t, 4, s.LayerCount())
	assert.Equal(t, 6, s.KeyCount())
}

func TestLayerName(t *testing.T) {
	s := newTestStore()

	name, ok := s.LayerName(0)
	require.True(t, ok)
	assert.Equal(t, "base", name)

	// An unnamed layer has no name, not an empty one.
	_, ok = s.LayerName(1)
	assert.False(t, ok)

	_, ok = s.LayerName(9)
	assert.False(t, ok)
}

func TestGetBindingPadsShortLayers(t *testing.T) {
	s := newTestStore()

	b, err := s.GetBinding(0, 5)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}

func TestSetBindingMarksDirty(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.HasUnsavedChanges())

	err := s.SetBinding(1, 3, behavior.Binding{Behavior: "mo", Param1: 2})
	require.NoError(t, err)
	assert.True(t, s.HasUnsavedChanges())

	b, err := s.GetBinding(1, 3)
	require.NoError(t, err)
	assert.Equal(t, behavior.Binding{Behavior: "mo", Param1: 2}, b)
}

func TestSetBindingInvalidLocation(t *testing.T) {
	s := newTestStore()

	assert.ErrorIs(t, s.SetBinding(4, 0, behavior.Binding{}), ErrInvalidLocation)
	assert.ErrorIs(t, s.SetBinding(0, 6, behavior.Binding{}), ErrInvalidLocation)
	assert.ErrorIs(t, s.SetBinding(-1, 0, behavior.Binding{}), ErrInvalidLocation)
	assert.False(t, s.HasUnsavedChanges())
}

func TestSaveCommitsWorkingCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.SetBinding(0, 0, behavior.Binding{Behavior: "trans"}))
	require.NoError(t, s.Save(ctx))
	assert.False(t, s.HasUnsavedChanges())

	// Discard after save keeps the committed edit.
	require.NoError(t, s.SetBinding(0, 0, behavior.Binding{Behavior: "none"}))
	require.NoError(t, s.Discard(ctx))

	b, err := s.GetBinding(0, 0)
	require.NoError(t, err)
	assert.Equal(t, behavior.Binding{Behavior: "trans"}, b)
}

func TestDiscardRevertsToSavedState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.SetBinding(0, 1, behavior.Binding{Behavior: "mo", Param1: 1}))
	require.NoError(t, s.Discard(ctx))
	assert.False(t, s.HasUnsavedChanges())

	b, err := s.GetBinding(0, 1)
	require.NoError(t, err)
	assert.Equal(t, behavior.Binding{Behavior: "kp", Param1: 5}, b)
}
