// Package lvn implements per-block local value numbering with constant
// folding, §4.C. It runs over one basic block's instruction list at a time;
// callers (internal/pipeline) drive it block by block.
package lvn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// kind tags a Value variant.
type kind int

const (
	kindFloat kind = iota
	kindOtherConst
	kindOp
	kindOpaque
)

// argRef is one operand of an Op value: either a reference to an earlier
// value-table position (when the source variable's current value is known)
// or an external variable name (when it is not — e.g. a function
// parameter, or a name defined in a different block).
type argRef struct {
	hasIndex bool
	index    int
	name     string
}

func (a argRef) key() string {
	if a.hasIndex {
		return fmt.Sprintf("#%d", a.index)
	}
	return "@" + a.name
}

// Value is the canonical form of §4.C: what two syntactically different
// instructions must agree on to be considered the same computation.
type Value struct {
	kind      kind
	literal   string // Float, OtherConst: the printed literal text
	op        ir.Op  // Op
	args      []argRef
	opaqueTag uint64 // Opaque
}

func floatValue(printed string) Value      { return Value{kind: kindFloat, literal: printed} }
func otherConstValue(printed string) Value { return Value{kind: kindOtherConst, literal: printed} }
func opValue(op ir.Op, args []argRef) Value { return Value{kind: kindOp, op: op, args: args} }
func opaqueValue(tag uint64) Value         { return Value{kind: kindOpaque, opaqueTag: tag} }

// key renders a Value into a string suitable for hash-index lookup. Two
// Values with equal key are considered the same computation; Opaque values
// always produce a unique key so they never merge (§4.C, §9).
func (v Value) key() string {
	switch v.kind {
	case kindFloat:
		return "F:" + v.literal
	case kindOtherConst:
		return "C:" + v.literal
	case kindOpaque:
		return fmt.Sprintf("X:%d", v.opaqueTag)
	case kindOp:
		parts := make([]string, len(v.args))
		for i, a := range v.args {
			parts[i] = a.key()
		}
		return "O:" + string(v.op) + ":" + strings.Join(parts, ",")
	default:
		return "?"
	}
}

// sortCommutativeArgs canonicalizes operand order for commutative ops so
// that `add a b` and `add b a` hash identically.
func sortCommutativeArgs(op ir.Op, args []argRef) []argRef {
	if !ir.CommutativeOps[op] {
		return args
	}
	out := append([]argRef(nil), args...)
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}
