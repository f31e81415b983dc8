package sqlitesettings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveOne(ctx, "behavior/local_id/2", []byte("mo")))
	require.NoError(t, s.SaveOne(ctx, "behavior/local_id/1", []byte("kp")))
	require.NoError(t, s.SaveOne(ctx, "physical_layouts/selected", []byte{1}))

	got := map[string]string{}
	err := s.Load(ctx, "behavior/local_id", func(key string, value []byte) error {
		got[key] = string(value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "kp", "2": "mo"}, got)
}

func TestSaveOneReplacesExistingRecord(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveOne(ctx, "ns/k", []byte("old")))
	require.NoError(t, s.SaveOne(ctx, "ns/k", []byte("new")))

	var got []byte
	err := s.Load(ctx, "ns", func(key string, value []byte) error {
		got = append([]byte(nil), value...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.SaveOne(ctx, "ns/k", []byte("v")))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	var keys []string
	require.NoError(t, second.Load(ctx, "ns", func(key string, value []byte) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"k"}, keys)
}

func TestLoadContinuesPastRejectedRecords(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveOne(ctx, "ns/a", []byte("1")))
	require.NoError(t, s.SaveOne(ctx, "ns/b", []byte("2")))

	var seen []string
	err := s.Load(ctx, "ns", func(key string, value []byte) error {
		seen = append(seen, key)
		return errors.New("rejected")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}
