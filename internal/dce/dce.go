// Package dce implements trivial dead-code elimination, §4.D: the global
// unused-destination sweep and the local kill-before-use sweep, iterated to
// a fixpoint. It operates on a flat instruction stream (one function body,
// or one basic block), matching how the algorithm is phrased in §4.D.
package dce

import "github.com/ethanuppal/cs6120/internal/ir"

// RunFunction iterates both sweeps over an entire function body until
// neither removes anything, returning the cleaned instruction list.
func RunFunction(body []ir.Item) []ir.Item {
	for {
		var changedGlobal, changedLocal bool
		body, changedGlobal = globalSweep(body)
		body, changedLocal = localSweepWholeFunction(body)
		if !changedGlobal && !changedLocal {
			return body
		}
	}
}

// globalSweep drops any Const/Value instruction whose destination is never
// read anywhere in the function, keeping every Effect and label (§4.D.1).
func globalSweep(body []ir.Item) ([]ir.Item, bool) {
	used := make(map[string]bool)
	for _, item := range body {
		for _, g := range ir.Gen(item) {
			used[g] = true
		}
	}

	out := make([]ir.Item, 0, len(body))
	changed := false
	for _, item := range body {
		if d, ok := ir.KillOf(item); ok && !used[d] {
			changed = true
			continue
		}
		out = append(out, item)
	}
	return out, changed
}

// localSweepWholeFunction applies the kill-before-use sweep (§4.D.2)
// independently within each maximal run of items between label markers,
// since the rule is defined over a single basic block's instruction order
// and a label marker always starts a fresh block.
func localSweepWholeFunction(body []ir.Item) ([]ir.Item, bool) {
	out := make([]ir.Item, 0, len(body))
	changedAny := false

	flush := func(run []ir.Item) {
		cleaned, changed := localSweepBlock(run)
		if changed {
			changedAny = true
		}
		out = append(out, cleaned...)
	}

	var run []ir.Item
	for _, item := range body {
		if _, isLabel := item.(ir.LabelMarker); isLabel {
			flush(run)
			run = nil
			out = append(out, item)
			continue
		}
		run = append(run, item)
	}
	flush(run)
	return out, changedAny
}

// localSweepBlock is §4.D.2 applied to one straight-line run of
// instructions: walk forward tracking `unused_defs` (name -> index of the
// instruction that defined it, not yet read); a later kill of the same name
// without an intervening use marks the earlier definition dead.
func localSweepBlock(instrs []ir.Item) ([]ir.Item, bool) {
	dead := make(map[int]bool)
	unusedDefs := make(map[string]int)

	for i, item := range instrs {
		for _, g := range ir.Gen(item) {
			delete(unusedDefs, g)
		}
		if d, ok := ir.KillOf(item); ok {
			if prior, stillUnused := unusedDefs[d]; stillUnused {
				dead[prior] = true
			}
			unusedDefs[d] = i
		}
	}

	if len(dead) == 0 {
		return instrs, false
	}
	out := make([]ir.Item, 0, len(instrs)-len(dead))
	for i, item := range instrs {
		if dead[i] {
			continue
		}
		out = append(out, item)
	}
	return out, true
}
