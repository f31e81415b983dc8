package behavior

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a test behavior handle with controllable readiness and
// metadata.
type fakeDevice struct {
	ready bool
	meta  *Metadata
	err   error
}

func (d *fakeDevice) Ready() bool {
	return d.ready
}

func (d *fakeDevice) ParameterMetadata() (*Metadata, error) {
	return d.meta, d.err
}

func TestResolve(t *testing.T) {
	r := NewRegistry()
	kp := &fakeDevice{ready: true, meta: Empty}
	r.Add("kp", kp)
	r.Add("mo", &fakeDevice{ready: true, meta: Empty})

	entry := r.Resolve("kp")
	require.NotNil(t, entry)
	assert.Equal(t, "kp", entry.Name)
	assert.Same(t, Device(kp), entry.Device)

	assert.Nil(t, r.Resolve("unknown"))
}

func TestResolveEmptyName(t *testing.T) {
	r := NewRegistry()
	r.Add("kp", &fakeDevice{ready: true})

	assert.Nil(t, r.Resolve(""))
}

func TestResolveSkipsNotReadyDevices(t *testing.T) {
	r := NewRegistry()
	r.Add("kp", &fakeDevice{ready: false})

	assert.Nil(t, r.Resolve("kp"))
}

func TestEntriesPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"kp", "mo", "lt", "trans"}
	for _, n := range names {
		r.Add(n, &fakeDevice{ready: true})
	}

	entries := r.Entries()
	require.Len(t, entries, len(names))
	for i, n := range names {
		assert.Equal(t, n, entries[i].Name)
	}
}

func TestLogDuplicateNamesDoesNotPanic(t *testing.T) {
	r := NewRegistry()
	r.Add("kp", &fakeDevice{ready: true})
	r.Add("kp", &fakeDevice{ready: true})

	// Duplicates are a diagnostic, not an error: both entries stay
	// registered and the check only logs.
	r.LogDuplicateNames(context.Background())
	assert.Len(t, r.Entries(), 2)
}
