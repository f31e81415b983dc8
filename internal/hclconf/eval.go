package hclconf

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// evalContext supplies the values configuration expressions may reference:
// no_position marks a position_map entry whose key has no counterpart in the
// source layout, and usage(page, id) packs a HID usage page and ID into the
// parameter encoding bindings carry.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"no_position": cty.NumberIntVal(-1),
		},
		Functions: map[string]function.Function{
			"usage": usageFunc,
		},
	}
}

var usageFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "page", Type: cty.Number},
		{Name: "id", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		var page, id uint16
		if err := gocty.FromCtyValue(args[0], &page); err != nil {
			return cty.NilVal, err
		}
		if err := gocty.FromCtyValue(args[1], &id); err != nil {
			return cty.NilVal, err
		}
		return cty.NumberUIntVal(uint64(page)<<16 | uint64(id)), nil
	},
})
