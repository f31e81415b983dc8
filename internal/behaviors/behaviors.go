// Package behaviors supplies the built-in behavior set. Each behavior is a
// static registry entry: a name, an always-ready device handle, and the
// parameter metadata that declares which binding parameters it accepts.
//
// What a behavior does when a key fires is the driver framework's business;
// nothing here executes key actions.
package behaviors

import (
	"github.com/keebforge/keycore/internal/behavior"
)

// device is the registry handle for a built-in behavior. Built-ins have no
// hardware dependencies, so they are always ready.
type device struct {
	meta *behavior.Metadata
}

func (d device) Ready() bool {
	return true
}

func (d device) ParameterMetadata() (*behavior.Metadata, error) {
	return d.meta, nil
}

// Module registers the built-in behavior set.
type Module struct{}

// Register appends every built-in to the registry in a fixed order, so
// registration order (and with it the settings-table ID order on first
// boot) is deterministic.
func (Module) Register(r *behavior.Registry) {
	for _, def := range builtins {
		r.Add(def.name, device{meta: def.meta})
	}
}
