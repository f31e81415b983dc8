package behavior

import (
	"context"

	"github.com/keebforge/keycore/internal/ctxlog"
)

// Module is implemented by packages that contribute behaviors to the
// registry during startup.
type Module interface {
	Register(r *Registry)
}

// Registry holds the ordered, immutable list of behaviors available to the
// firmware. It is populated once during startup, before any request handler
// runs, and is read-only afterwards.
type Registry struct {
	entries []*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends an entry. Registration order is preserved; duplicate names are
// not rejected here because registration is static — LogDuplicateNames
// reports them at startup instead.
func (r *Registry) Add(name string, dev Device) {
	r.entries = append(r.entries, &Entry{Name: name, Device: dev})
}

// Entries returns the backing list in registration order. Callers must not
// mutate it.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Resolve looks a behavior up by name. Only entries whose device reports
// ready are considered; an empty name never resolves. Go's string comparison
// already short-circuits when both operands share a backing array, so the
// interned-name fast path costs nothing extra here.
func (r *Registry) Resolve(name string) *Entry {
	if name == "" {
		return nil
	}

	for _, e := range r.entries {
		if e.Device.Ready() && e.Name == name {
			return e
		}
	}

	return nil
}

// LogDuplicateNames reports behaviors registered under the same name.
// Names must be unique for local-ID assignment to be a bijection, but
// registration is static so this is a startup diagnostic, not a guarantee.
func (r *Registry) LogDuplicateNames(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	for i, current := range r.entries {
		for _, other := range r.entries[i+1:] {
			if current.Name == other.Name {
				logger.Error("Multiple behaviors registered with the same name.", "name", current.Name)
			}
		}
	}
}
