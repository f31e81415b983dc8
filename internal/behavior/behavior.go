package behavior

// Device is the driver-side handle backing a registered behavior. The
// surrounding framework supplies implementations; this package only queries
// readiness and declared parameter metadata.
type Device interface {
	// Ready reports whether the backing device initialized successfully.
	// Entries whose device is not ready are invisible to lookups.
	Ready() bool

	// ParameterMetadata returns the parameter combinations this behavior
	// accepts. Returning an error marks metadata retrieval as failed; the
	// error is propagated to the caller unchanged.
	ParameterMetadata() (*Metadata, error)
}

// Entry is one registry row: a behavior name bound to its device handle.
type Entry struct {
	Name   string
	Device Device
}

// Binding assigns a behavior plus two parameters to one key position. The
// zero Binding (empty name, zero params) is the canonical "nothing here"
// cell value.
type Binding struct {
	Behavior string
	Param1   uint32
	Param2   uint32
}

// IsEmpty reports whether the binding is the zero cell value.
func (b Binding) IsEmpty() bool {
	return b == Binding{}
}
