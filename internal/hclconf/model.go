package hclconf

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all recognized top-level blocks from any config file, so
// keymap and layout definitions can live in one file or be split freely.
type fileRoot struct {
	Layers       []*Layer       `hcl:"layer,block"`
	Layouts      []*Layout      `hcl:"layout,block"`
	PositionMaps []*PositionMap `hcl:"position_map,block"`
	Remain       hcl.Body       `hcl:",remain"`
}

// Layer is one keymap layer: a display name and its bindings in key-position
// order.
type Layer struct {
	Name     string     `hcl:"name,label"`
	Bindings []*Binding `hcl:"binding,block"`
}

// Binding assigns a behavior to the next key position of its layer.
type Binding struct {
	Behavior string `hcl:"behavior"`
	Param1   uint32 `hcl:"param1,optional"`
	Param2   uint32 `hcl:"param2,optional"`
}

// Layout is one selectable physical layout.
type Layout struct {
	Name        string `hcl:"name,label"`
	DisplayName string `hcl:"display_name,optional"`
	Keys        []*Key `hcl:"key,block"`
}

// Key is one physical key descriptor. Rotation is centidegrees around
// (rx, ry); sizes and positions are layout units.
type Key struct {
	X      int32 `hcl:"x"`
	Y      int32 `hcl:"y"`
	Width  int32 `hcl:"w,optional"`
	Height int32 `hcl:"h,optional"`
	R      int32 `hcl:"r,optional"`
	RX     int32 `hcl:"rx,optional"`
	RY     int32 `hcl:"ry,optional"`
}

// PositionMap declares the per-position correspondence from one layout to
// another: entry i is the from-layout position that to-layout position i
// derives from, or -1 for no correspondence.
type PositionMap struct {
	From string  `hcl:"from,label"`
	To   string  `hcl:"to,label"`
	Map  []int64 `hcl:"map"`
}

// Model is the merged result of loading every configuration file.
type Model struct {
	Layers       []*Layer
	Layouts      []*Layout
	PositionMaps []*PositionMap
}
