// Package dom computes dominator sets, the immediate-dominator tree, and
// dominance frontiers over a FunctionCfg, §4.F.
package dom

import (
	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
)

// Sets maps every block to its dominator set (always includes itself).
type Sets map[cfg.BasicBlockIdx]dataflow.Set[cfg.BasicBlockIdx]

// Compute runs the iterative fixpoint of §4.F: dom[entry] = {entry},
// dom[b] = all_blocks otherwise, converging by repeated intersection over
// reverse postorder.
func Compute(c *cfg.FunctionCfg) Sets {
	blocks := c.Blocks()
	all := dataflow.NewSet(blocks...)

	dom := make(Sets, len(blocks))
	dom[c.Entry] = dataflow.NewSet(c.Entry)
	for _, b := range blocks {
		if b != c.Entry {
			dom[b] = cloneSet(all)
		}
	}

	order := reversePostorder(c, blocks)
	for {
		changed := false
		for _, b := range order {
			if b == c.Entry {
				continue
			}
			preds := c.Preds(b)
			var next dataflow.Set[cfg.BasicBlockIdx]
			if len(preds) == 0 {
				next = dataflow.NewSet[cfg.BasicBlockIdx]()
			} else {
				next = cloneSet(dom[preds[0]])
				for _, p := range preds[1:] {
					next = intersect(next, dom[p])
				}
			}
			next[b] = struct{}{}
			if !next.Equal(dom[b]) {
				dom[b] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dom
}

// Dominates reports whether d dominates b (d ∈ dom[b]).
func (s Sets) Dominates(d, b cfg.BasicBlockIdx) bool {
	_, ok := s[b][d]
	return ok
}

// StrictlyDominates reports whether d strictly dominates b.
func (s Sets) StrictlyDominates(d, b cfg.BasicBlockIdx) bool {
	return d != b && s.Dominates(d, b)
}

func cloneSet(s dataflow.Set[cfg.BasicBlockIdx]) dataflow.Set[cfg.BasicBlockIdx] {
	out := make(dataflow.Set[cfg.BasicBlockIdx], len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func intersect(a, b dataflow.Set[cfg.BasicBlockIdx]) dataflow.Set[cfg.BasicBlockIdx] {
	out := make(dataflow.Set[cfg.BasicBlockIdx])
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// reversePostorder computes a DFS postorder over successors from the
// entry, reversed, with unreachable blocks appended afterward.
func reversePostorder(c *cfg.FunctionCfg, all []cfg.BasicBlockIdx) []cfg.BasicBlockIdx {
	visited := make(map[cfg.BasicBlockIdx]bool, len(all))
	var postorder []cfg.BasicBlockIdx

	var visit func(idx cfg.BasicBlockIdx)
	visit = func(idx cfg.BasicBlockIdx) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, s := range c.Succs(idx) {
			visit(s)
		}
		postorder = append(postorder, idx)
	}
	visit(c.Entry)

	rpo := make([]cfg.BasicBlockIdx, len(postorder))
	for i, b := range postorder {
		rpo[len(postorder)-1-i] = b
	}
	for _, idx := range all {
		if !visited[idx] {
			rpo = append(rpo, idx)
		}
	}
	return rpo
}
