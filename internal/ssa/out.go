package ssa

import (
	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// OutOfSSA converts c in place out of get/set SSA form, §4.G "Out of SSA":
// every `get` is removed, and every `set [d, s]` becomes `Value{dest=d,
// op=id, args=[s], type=type_of_get(d)}`. The precondition — c must be
// strict SSA — is checked first; on failure, or if a `set` names a `get`
// destination that was never seen, c is left unmodified.
func OutOfSSA(c *cfg.FunctionCfg) error {
	if err := ValidateStrict(c); err != nil {
		return errors.Wrap(err, "cannot convert out of SSA")
	}

	getTypes := make(map[string]ir.Type)
	for _, idx := range c.Blocks() {
		for _, instr := range c.MustBlock(idx).Instructions {
			if v, ok := instr.(ir.ValueInstr); ok && v.Op == ir.OpGet {
				getTypes[v.Dest] = v.Type
			}
		}
	}

	planned := make(map[cfg.BasicBlockIdx][]ir.Instr, c.NumBlocks())
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		out := make([]ir.Instr, 0, len(b.Instructions))
		for _, instr := range b.Instructions {
			switch v := instr.(type) {
			case ir.ValueInstr:
				if v.Op == ir.OpGet {
					continue
				}
				out = append(out, v)
			case ir.EffectInstr:
				if v.Op != ir.OpSet {
					out = append(out, v)
					continue
				}
				if len(v.Args) != 2 {
					return errors.Errorf("cannot convert out of SSA: malformed set %v", v.Args)
				}
				dest, src := v.Args[0], v.Args[1]
				typ, ok := getTypes[dest]
				if !ok {
					return errors.Errorf("cannot convert out of SSA: set targets unknown get %q", dest)
				}
				out = append(out, ir.ValueInstr{Dest: dest, Type: typ, Op: ir.OpID, Args: []string{src}})
			default:
				out = append(out, instr)
			}
		}
		planned[idx] = out
	}

	for idx, instrs := range planned {
		c.MustBlock(idx).Instructions = instrs
	}
	return nil
}
