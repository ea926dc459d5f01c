package dataflow

import "github.com/ethanuppal/cs6120/internal/cfg"

// LiveVariables runs the backward live-variables instance of §4.E: the
// entry contribution (at the function's exit blocks) is ∅, since nothing
// is live after a function returns.
func LiveVariables(c *cfg.FunctionCfg) map[cfg.BasicBlockIdx]Set[string] {
	return Solve(c, Backward, NewSet[string](), Union[string], liveTransfer)
}

// liveTransfer computes a block's upward-exposed variables from the fact
// set flowing in from its successors: walk backward, killing on
// definition and adding on use, with standard use-before-kill-within-block
// semantics (a variable used before being redefined in the same
// instruction is live into the block).
func liveTransfer(c *cfg.FunctionCfg, idx cfg.BasicBlockIdx, in Set[string]) Set[string] {
	b := c.MustBlock(idx)
	working := make(Set[string], len(in))
	for k := range in {
		working[k] = struct{}{}
	}

	for i := len(b.Instructions) - 1; i >= 0; i-- {
		instr := b.Instructions[i]
		if d, ok := instr.Kill(); ok {
			delete(working, d)
		}
		for _, g := range instr.Gen() {
			working[g] = struct{}{}
		}
	}
	return working
}
