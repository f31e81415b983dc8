package behavior

// Metadata declares which (param1, param2) combinations a behavior accepts.
// A binding is legal if at least one Set accepts both parameters. A nil or
// empty Metadata means only (0, 0) is legal.
type Metadata struct {
	Sets []Set
}

// Set is one alternative parameter shape: an acceptable-value list for each
// parameter independently. An empty list constrains that parameter to zero.
type Set struct {
	Param1 []Value
	Param2 []Value
}

// Empty is the canonical metadata for behaviors that take no parameters.
var Empty = &Metadata{}

// Value describes one acceptable shape for a single parameter. It is a
// closed sum type; the validator matches on every case exhaustively.
type Value interface {
	isValue()
}

// Nil accepts only the zero value.
type Nil struct{}

// HIDUsage accepts a parameter encoding a HID usage page and ID pair,
// validated against the known keyboard and consumer usage ranges.
type HIDUsage struct{}

// LayerIndex accepts an index addressing an existing keymap layer.
type LayerIndex struct{}

// Literal accepts exactly one value.
type Literal struct {
	Value uint32
}

// Range accepts values between Min and Max inclusive.
type Range struct {
	Min uint32
	Max uint32
}

func (Nil) isValue()        {}
func (HIDUsage) isValue()   {}
func (LayerIndex) isValue() {}
func (Literal) isValue()    {}
func (Range) isValue()      {}
