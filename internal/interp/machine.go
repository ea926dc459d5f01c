package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// maxSteps bounds block execution so a malformed or genuinely
// non-terminating program fails loudly instead of hanging a test run; the
// scenarios this package exists to run (§8) all terminate in a handful of
// iterations.
const maxSteps = 1_000_000

// Machine holds every function loaded for one interpretation session and
// the sink print writes to.
type Machine struct {
	funcs map[string]*cfg.FunctionCfg
	out   io.Writer
}

// New creates a Machine that writes print output to out.
func New(out io.Writer) *Machine {
	return &Machine{funcs: make(map[string]*cfg.FunctionCfg), out: out}
}

// Load registers a function's CFG under its signature name so call can
// reach it.
func (m *Machine) Load(c *cfg.FunctionCfg) {
	m.funcs[c.Signature.Name] = c
}

// Run executes the named function to completion and returns its return
// value (the zero Value if it returns nothing).
func (m *Machine) Run(name string, args []Value) (Value, error) {
	c, ok := m.funcs[name]
	if !ok {
		return Value{}, errors.Errorf("interp: function %q not loaded", name)
	}
	if len(args) != len(c.Signature.Arguments) {
		return Value{}, errors.Errorf("interp: %s expects %d argument(s), got %d",
			name, len(c.Signature.Arguments), len(args))
	}

	f := &frame{store: make(map[string]Value), m: m}
	for i, p := range c.Signature.Arguments {
		f.store[p.Name] = args[i]
	}
	return f.run(c)
}

// frame is one function activation: a flat variable store, matching the
// IR's flat (non-nested-scope) name space.
type frame struct {
	store map[string]Value
	m     *Machine
}

func (f *frame) run(c *cfg.FunctionCfg) (Value, error) {
	idx := c.Entry
	for step := 0; ; step++ {
		if step > maxSteps {
			return Value{}, errors.Errorf("interp: exceeded %d steps executing %s (possible non-terminating loop)", maxSteps, c.Signature.Name)
		}

		b := c.MustBlock(idx)
		for _, instr := range b.Instructions {
			ret, done, err := f.step(instr)
			if err != nil {
				return Value{}, errors.Wrapf(err, "interp: executing %s", c.Signature.Name)
			}
			if done {
				return ret, nil
			}
		}

		next, ret, isReturn, err := f.resolveExit(c, c.Exit(idx))
		if err != nil {
			return Value{}, errors.Wrapf(err, "interp: executing %s", c.Signature.Name)
		}
		if isReturn {
			return ret, nil
		}
		idx = next
	}
}

func (f *frame) resolveExit(c *cfg.FunctionCfg, exit cfg.Exit) (cfg.BasicBlockIdx, Value, bool, error) {
	switch exit.Kind {
	case ir.ExitFallthrough:
		if !exit.FallthroughOK {
			return cfg.BasicBlockIdx{}, Value{}, true, nil
		}
		return exit.FallthroughTarget, Value{}, false, nil
	case ir.ExitUnconditional:
		return exit.Target, Value{}, false, nil
	case ir.ExitConditional:
		cond, ok := f.store[exit.Cond]
		if !ok {
			return cfg.BasicBlockIdx{}, Value{}, false, errors.Errorf("use of undefined variable %q", exit.Cond)
		}
		if cond.Truthy() {
			return exit.TrueTarget, Value{}, false, nil
		}
		return exit.FalseTarget, Value{}, false, nil
	case ir.ExitReturn:
		if !exit.HasArg {
			return cfg.BasicBlockIdx{}, Value{}, true, nil
		}
		val, ok := f.store[exit.Arg]
		if !ok {
			return cfg.BasicBlockIdx{}, Value{}, false, errors.Errorf("use of undefined variable %q", exit.Arg)
		}
		return cfg.BasicBlockIdx{}, val, true, nil
	default:
		return cfg.BasicBlockIdx{}, Value{}, false, errors.Errorf("unresolved exit kind %v", exit.Kind)
	}
}

// step executes one instruction. The bool result reports whether the
// function returned (only ever true via a ret handled by the caller's exit
// resolution — step itself never returns done=true, kept for symmetry with
// resolveExit's signature).
func (f *frame) step(instr ir.Instr) (Value, bool, error) {
	switch v := instr.(type) {
	case ir.ConstInstr:
		f.store[v.Dest] = FromLiteral(v.Value)
		return Value{}, false, nil
	case ir.ValueInstr:
		return Value{}, false, f.execValue(v)
	case ir.EffectInstr:
		return Value{}, false, f.execEffect(v)
	default:
		return Value{}, false, errors.Errorf("unhandled instruction %T", instr)
	}
}

func (f *frame) arg(name string) (Value, error) {
	v, ok := f.store[name]
	if !ok {
		return Value{}, errors.Errorf("use of undefined variable %q", name)
	}
	return v, nil
}

func (f *frame) execValue(v ir.ValueInstr) error {
	switch v.Op {
	case ir.OpGet:
		if _, ok := f.store[v.Dest]; !ok {
			f.store[v.Dest] = Zero(v.Type)
		}
		return nil
	case ir.OpUndef:
		f.store[v.Dest] = Zero(v.Type)
		return nil
	case ir.OpID:
		a, err := f.arg(v.Args[0])
		if err != nil {
			return err
		}
		f.store[v.Dest] = a
		return nil
	case ir.OpAlloc:
		f.store[v.Dest] = Value{Kind: ir.KPtr, Ptr: &Cell{}}
		return nil
	case ir.OpCall:
		return f.execCall(v)
	}

	args := make([]Value, len(v.Args))
	for i, name := range v.Args {
		a, err := f.arg(name)
		if err != nil {
			return err
		}
		args[i] = a
	}
	result, err := evalOp(v.Op, args)
	if err != nil {
		return errors.Wrapf(err, "evaluating %s", v.Dest)
	}
	f.store[v.Dest] = result
	return nil
}

func (f *frame) execCall(v ir.ValueInstr) error {
	if len(v.Funcs) != 1 {
		return errors.Errorf("call must name exactly one function, got %v", v.Funcs)
	}
	args := make([]Value, len(v.Args))
	for i, name := range v.Args {
		a, err := f.arg(name)
		if err != nil {
			return err
		}
		args[i] = a
	}
	result, err := f.m.Run(v.Funcs[0], args)
	if err != nil {
		return err
	}
	f.store[v.Dest] = result
	return nil
}

func (f *frame) execEffect(e ir.EffectInstr) error {
	switch e.Op {
	case ir.OpNop, ir.OpJmp, ir.OpBr, ir.OpRet:
		return nil
	case ir.OpPrint:
		parts := make([]string, len(e.Args))
		for i, name := range e.Args {
			a, err := f.arg(name)
			if err != nil {
				return err
			}
			parts[i] = a.String()
		}
		fmt.Fprintln(f.m.out, strings.Join(parts, " "))
		return nil
	case ir.OpSet:
		if len(e.Args) != 2 {
			return errors.Errorf("malformed set %v", e.Args)
		}
		src, err := f.arg(e.Args[1])
		if err != nil {
			return err
		}
		f.store[e.Args[0]] = src
		return nil
	case ir.OpStore:
		if len(e.Args) != 2 {
			return errors.Errorf("malformed store %v", e.Args)
		}
		ptr, err := f.arg(e.Args[0])
		if err != nil {
			return err
		}
		val, err := f.arg(e.Args[1])
		if err != nil {
			return err
		}
		if ptr.Ptr == nil {
			return errors.Errorf("store through a null pointer")
		}
		if ptr.Ptr.Freed {
			return errors.Errorf("store through a freed pointer")
		}
		ptr.Ptr.Val = val
		return nil
	case ir.OpFree:
		if len(e.Args) != 1 {
			return errors.Errorf("malformed free %v", e.Args)
		}
		ptr, err := f.arg(e.Args[0])
		if err != nil {
			return err
		}
		if ptr.Ptr == nil {
			return errors.Errorf("free of a null pointer")
		}
		if ptr.Ptr.Freed {
			return errors.Errorf("double free")
		}
		ptr.Ptr.Freed = true
		return nil
	default:
		return errors.Errorf("unhandled effect op %q", e.Op)
	}
}
