// Package interp is a tree/block-walking evaluator over a FunctionCfg,
// bundled so the middle-end's round-trip and LVN/LICM correctness
// properties are executable rather than aspirational (§4.C "LVN
// correctness", §8 concrete scenarios).
package interp

import (
	"fmt"
	"strconv"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// Value is a runtime value of one of the five §3 types. Only one of the
// scalar fields is meaningful, selected by Kind; Ptr is meaningful only for
// KPtr.
type Value struct {
	Kind ir.Kind
	I    int64
	B    bool
	F    float64
	C    rune
	Ptr  *Cell
}

// Cell is one heap allocation produced by alloc.
type Cell struct {
	Val   Value
	Freed bool
}

// Zero returns the default value of t, used to materialize undef and an
// unset get.
func Zero(t ir.Type) Value {
	return Value{Kind: t.Kind}
}

// FromLiteral converts a parsed IR literal to a runtime value.
func FromLiteral(lit ir.Literal) Value {
	switch lit.Kind {
	case ir.LitInt:
		return Value{Kind: ir.KInt, I: lit.I}
	case ir.LitBool:
		return Value{Kind: ir.KBool, B: lit.B}
	case ir.LitFloat:
		return Value{Kind: ir.KFloat, F: lit.F}
	case ir.LitChar:
		return Value{Kind: ir.KChar, C: lit.C}
	default:
		return Value{}
	}
}

// Truthy reports a bool value's condition for br.
func (v Value) Truthy() bool { return v.Kind == ir.KBool && v.B }

// String renders a value the way print emits it.
func (v Value) String() string {
	switch v.Kind {
	case ir.KInt:
		return strconv.FormatInt(v.I, 10)
	case ir.KBool:
		return strconv.FormatBool(v.B)
	case ir.KFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case ir.KChar:
		return string(v.C)
	case ir.KPtr:
		if v.Ptr == nil {
			return "<nullptr>"
		}
		return fmt.Sprintf("<ptr %p>", v.Ptr)
	default:
		return "<void>"
	}
}
