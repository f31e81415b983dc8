package behaviors

import (
	"github.com/keebforge/keycore/internal/behavior"
)

// Bluetooth profile commands accepted by the "bt" behavior's first
// parameter.
const (
	btClear      = 0
	btNext       = 1
	btPrev       = 2
	btSelect     = 3
	btDisconnect = 4

	// btProfileMax bounds the profile index commands 3 and 4 carry in
	// their second parameter.
	btProfileMax = 4
)

// Output selection values for the "out" behavior.
const (
	outToggle = 0
	outUSB    = 1
	outBLE    = 2
)

var (
	keyParam   = []behavior.Value{behavior.HIDUsage{}}
	layerParam = []behavior.Value{behavior.LayerIndex{}}
)

// oneParam declares a single parameter set taking only param1.
func oneParam(p1 []behavior.Value) *behavior.Metadata {
	return &behavior.Metadata{Sets: []behavior.Set{{Param1: p1}}}
}

// twoParam declares a single parameter set taking both parameters.
func twoParam(p1, p2 []behavior.Value) *behavior.Metadata {
	return &behavior.Metadata{Sets: []behavior.Set{{Param1: p1, Param2: p2}}}
}

// builtins is the built-in behavior table, in registration order.
var builtins = []struct {
	name string
	meta *behavior.Metadata
}{
	// Key presses.
	{"kp", oneParam(keyParam)}, // key press
	{"kt", oneParam(keyParam)}, // key toggle
	{"sk", oneParam(keyParam)}, // sticky key

	// Layer switching.
	{"mo", oneParam(layerParam)},  // momentary layer
	{"to", oneParam(layerParam)},  // to layer
	{"tog", oneParam(layerParam)}, // toggle layer
	{"sl", oneParam(layerParam)},  // sticky layer

	// Hold-taps: hold behavior parameter first, tap second.
	{"mt", twoParam(keyParam, keyParam)},   // mod-tap
	{"lt", twoParam(layerParam, keyParam)}, // layer-tap

	// Parameterless.
	{"trans", behavior.Empty}, // transparent
	{"none", behavior.Empty},  // none

	// Bluetooth profile management: clear/next/prev take no second
	// parameter; select and disconnect carry a profile index.
	{"bt", &behavior.Metadata{Sets: []behavior.Set{
		{
			Param1: []behavior.Value{
				behavior.Literal{Value: btClear},
				behavior.Literal{Value: btNext},
				behavior.Literal{Value: btPrev},
			},
		},
		{
			Param1: []behavior.Value{
				behavior.Literal{Value: btSelect},
				behavior.Literal{Value: btDisconnect},
			},
			Param2: []behavior.Value{
				behavior.Range{Min: 0, Max: btProfileMax},
			},
		},
	}}},

	// Output selection.
	{"out", oneParam([]behavior.Value{
		behavior.Range{Min: outToggle, Max: outBLE},
	})},
}
