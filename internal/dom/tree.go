package dom

import "github.com/ethanuppal/cs6120/internal/cfg"

// Tree is the immediate-dominator tree of §4.F: Parent maps every non-entry
// block to its immediate dominator; Children is its inverse, giving each
// block the set of blocks it immediately dominates.
type Tree struct {
	Entry    cfg.BasicBlockIdx
	Parent   map[cfg.BasicBlockIdx]cfg.BasicBlockIdx
	Children map[cfg.BasicBlockIdx][]cfg.BasicBlockIdx
}

// BuildTree derives the immediate-dominator tree from a computed Sets.
// Per §4.F: idom(b) is the strict dominator of b that is itself dominated
// by every other strict dominator of b — the unique closest one, since the
// dominators of any reachable block form a chain.
func BuildTree(c *cfg.FunctionCfg, doms Sets) *Tree {
	t := &Tree{
		Entry:    c.Entry,
		Parent:   make(map[cfg.BasicBlockIdx]cfg.BasicBlockIdx),
		Children: make(map[cfg.BasicBlockIdx][]cfg.BasicBlockIdx),
	}

	for _, b := range c.Blocks() {
		if b == c.Entry {
			continue
		}
		strict := make([]cfg.BasicBlockIdx, 0, len(doms[b]))
		for d := range doms[b] {
			if d != b {
				strict = append(strict, d)
			}
		}
		if len(strict) == 0 {
			continue // unreachable block: no dominator chain to the entry
		}

		var idom cfg.BasicBlockIdx
		for _, d := range strict {
			dominatedByAllOthers := true
			for _, d2 := range strict {
				if d2 == d {
					continue
				}
				if !doms.Dominates(d2, d) {
					dominatedByAllOthers = false
					break
				}
			}
			if dominatedByAllOthers {
				idom = d
				break
			}
		}
		t.Parent[b] = idom
		t.Children[idom] = append(t.Children[idom], b)
	}
	return t
}
