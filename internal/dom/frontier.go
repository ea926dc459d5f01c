package dom

import (
	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
)

// Frontiers maps every block d to its dominance frontier df(d), §4.F:
// df(d) = { s : ∃ p with d ∈ dom[p], s ∈ succ(p), d ∉ dom[s] ∨ s = d }.
type Frontiers map[cfg.BasicBlockIdx]dataflow.Set[cfg.BasicBlockIdx]

// ComputeFrontiers computes the dominance frontier of every block.
func ComputeFrontiers(c *cfg.FunctionCfg, doms Sets) Frontiers {
	blocks := c.Blocks()
	out := make(Frontiers, len(blocks))
	for _, d := range blocks {
		out[d] = dataflow.NewSet[cfg.BasicBlockIdx]()
	}

	for _, d := range blocks {
		for _, p := range blocks {
			if !doms.Dominates(d, p) {
				continue
			}
			for _, s := range c.Succs(p) {
				if !doms.StrictlyDominates(d, s) {
					out[d][s] = struct{}{}
				}
			}
		}
	}
	return out
}
