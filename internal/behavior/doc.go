// Package behavior defines the behavior registry and the validation rules
// for key bindings.
//
// A behavior is a named key action capability implemented by a driver-side
// device. This package never executes behaviors; it only resolves them by
// name, inspects the parameter metadata they declare, and decides whether a
// candidate binding is acceptable. The registry is built once during startup
// and injected into every component that needs lookup — there is no ambient
// global registry.
package behavior
