package interp

import (
	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// evalOp evaluates one of the arithmetic/comparison/logic ops of §3 against
// already-resolved argument values. get, undef, id, alloc, and call are
// handled by the caller before reaching here, since their semantics aren't
// "compute from args".
func evalOp(op ir.Op, args []Value) (Value, error) {
	switch op {
	case ir.OpAdd:
		return intBinary(args, func(a, b int64) int64 { return a + b })
	case ir.OpSub:
		return intBinary(args, func(a, b int64) int64 { return a - b })
	case ir.OpMul:
		return intBinary(args, func(a, b int64) int64 { return a * b })
	case ir.OpDiv:
		if len(args) == 2 && args[1].I == 0 {
			return Value{}, errors.New("division by zero")
		}
		return intBinary(args, func(a, b int64) int64 { return a / b })
	case ir.OpEq:
		return intCompare(args, func(a, b int64) bool { return a == b })
	case ir.OpLt:
		return intCompare(args, func(a, b int64) bool { return a < b })
	case ir.OpGt:
		return intCompare(args, func(a, b int64) bool { return a > b })
	case ir.OpLe:
		return intCompare(args, func(a, b int64) bool { return a <= b })
	case ir.OpGe:
		return intCompare(args, func(a, b int64) bool { return a >= b })
	case ir.OpNot:
		if len(args) != 1 {
			return Value{}, errors.Errorf("not takes 1 argument, got %d", len(args))
		}
		return Value{Kind: ir.KBool, B: !args[0].B}, nil
	case ir.OpAnd:
		return boolBinary(args, func(a, b bool) bool { return a && b })
	case ir.OpOr:
		return boolBinary(args, func(a, b bool) bool { return a || b })
	case ir.OpFadd:
		return floatBinary(args, func(a, b float64) float64 { return a + b })
	case ir.OpFsub:
		return floatBinary(args, func(a, b float64) float64 { return a - b })
	case ir.OpFmul:
		return floatBinary(args, func(a, b float64) float64 { return a * b })
	case ir.OpFdiv:
		if len(args) == 2 && args[1].F == 0 {
			return Value{}, errors.New("division by zero")
		}
		return floatBinary(args, func(a, b float64) float64 { return a / b })
	case ir.OpFeq:
		return floatCompare(args, func(a, b float64) bool { return a == b })
	case ir.OpFlt:
		return floatCompare(args, func(a, b float64) bool { return a < b })
	case ir.OpFgt:
		return floatCompare(args, func(a, b float64) bool { return a > b })
	case ir.OpFle:
		return floatCompare(args, func(a, b float64) bool { return a <= b })
	case ir.OpFge:
		return floatCompare(args, func(a, b float64) bool { return a >= b })
	default:
		return Value{}, errors.Errorf("unhandled value op %q", op)
	}
}

func intBinary(args []Value, f func(a, b int64) int64) (Value, error) {
	if len(args) != 2 {
		return Value{}, errors.Errorf("expected 2 int arguments, got %d", len(args))
	}
	return Value{Kind: ir.KInt, I: f(args[0].I, args[1].I)}, nil
}

func intCompare(args []Value, f func(a, b int64) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, errors.Errorf("expected 2 int arguments, got %d", len(args))
	}
	return Value{Kind: ir.KBool, B: f(args[0].I, args[1].I)}, nil
}

func boolBinary(args []Value, f func(a, b bool) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, errors.Errorf("expected 2 bool arguments, got %d", len(args))
	}
	return Value{Kind: ir.KBool, B: f(args[0].B, args[1].B)}, nil
}

func floatBinary(args []Value, f func(a, b float64) float64) (Value, error) {
	if len(args) != 2 {
		return Value{}, errors.Errorf("expected 2 float arguments, got %d", len(args))
	}
	return Value{Kind: ir.KFloat, F: f(args[0].F, args[1].F)}, nil
}

func floatCompare(args []Value, f func(a, b float64) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, errors.Errorf("expected 2 float arguments, got %d", len(args))
	}
	return Value{Kind: ir.KBool, B: f(args[0].F, args[1].F)}, nil
}
