package ssa

import (
	"sort"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// insertUndefDefs implements §4.G step 6: for every recorded `name.undef`
// token, prepend at entry `Value{dest=name.undef, op=undef, type=...}` —
// unless some block already defines that exact token (renaming only ever
// produces `name.undef` as a read target, never as a destination, so this
// guard is defensive rather than load-bearing).
func insertUndefDefs(c *cfg.FunctionCfg, undef map[string]ir.Type) {
	if len(undef) == 0 {
		return
	}
	names := make([]string, 0, len(undef))
	for n := range undef {
		names = append(names, n)
	}
	sort.Strings(names)

	entry := c.MustBlock(c.Entry)
	defined := make(map[string]bool)
	for _, idx := range c.Blocks() {
		for _, instr := range c.MustBlock(idx).Instructions {
			if d, ok := instr.Kill(); ok {
				defined[d] = true
			}
		}
	}

	var prepend []ir.Instr
	for _, name := range names {
		token := name + ".undef"
		if defined[token] {
			continue
		}
		prepend = append(prepend, ir.ValueInstr{Dest: token, Type: undef[name], Op: ir.OpUndef})
	}
	if len(prepend) > 0 {
		entry.Instructions = append(prepend, entry.Instructions...)
	}
}
