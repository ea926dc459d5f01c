// Package dataflow implements the generic forward/backward worklist driver
// of §4.E, plus the reaching-definitions and live-variables instances built
// on top of it.
package dataflow

import "github.com/ethanuppal/cs6120/internal/cfg"

// Direction selects traversal order and which edge set feeds a block's
// inputs.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// MergeFunc combines the solutions flowing in from a block's neighbors.
// Set union (dataflow.Union) satisfies the monotonicity requirement of
// §4.E for every instance below.
type MergeFunc[T comparable] func(a, b Set[T]) Set[T]

// TransferFunc computes a block's output fact set from its merged input.
type TransferFunc[T comparable] func(c *cfg.FunctionCfg, idx cfg.BasicBlockIdx, in Set[T]) Set[T]

// Solve runs the generic worklist algorithm of §4.E and returns, for every
// block, the fact set it contributes to its downstream neighbors (its OUT
// set for Forward, its IN set for Backward — in both cases, the value
// `transfer` returned for that block on its final iteration).
func Solve[T comparable](c *cfg.FunctionCfg, direction Direction, entryInputs Set[T], merge MergeFunc[T], transfer TransferFunc[T]) map[cfg.BasicBlockIdx]Set[T] {
	blocks := c.Blocks()
	order := postorder(c, blocks)
	if direction == Forward {
		order = reversed(order)
	}

	neighborsIn := c.Preds
	neighborsOut := c.Succs
	isEntryNode := func(idx cfg.BasicBlockIdx) bool { return idx == c.Entry }
	if direction == Backward {
		neighborsIn = c.Succs
		neighborsOut = c.Preds
		isEntryNode = func(idx cfg.BasicBlockIdx) bool { return len(c.Succs(idx)) == 0 }
	}

	solution := make(map[cfg.BasicBlockIdx]Set[T], len(blocks))
	for _, idx := range blocks {
		solution[idx] = NewSet[T]()
	}

	queued := make(map[cfg.BasicBlockIdx]bool, len(order))
	worklist := append([]cfg.BasicBlockIdx(nil), order...)
	for _, idx := range order {
		queued[idx] = true
	}

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		queued[cur] = false

		in := NewSet[T]()
		if isEntryNode(cur) {
			in = merge(in, entryInputs)
		}
		for _, n := range neighborsIn(cur) {
			in = merge(in, solution[n])
		}

		out := transfer(c, cur, in)
		if !out.Equal(solution[cur]) {
			solution[cur] = out
			for _, n := range neighborsOut(cur) {
				if !queued[n] {
					worklist = append(worklist, n)
					queued[n] = true
				}
			}
		}
	}
	return solution
}

// postorder computes a DFS postorder over the forward (successor) graph
// starting from the entry. Unreachable blocks (absent from this DFS) are
// appended afterward in their original order, so every live block still
// gets a deterministic position and at least one solver pass.
func postorder(c *cfg.FunctionCfg, all []cfg.BasicBlockIdx) []cfg.BasicBlockIdx {
	visited := make(map[cfg.BasicBlockIdx]bool, len(all))
	var order []cfg.BasicBlockIdx

	var visit func(idx cfg.BasicBlockIdx)
	visit = func(idx cfg.BasicBlockIdx) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, s := range c.Succs(idx) {
			visit(s)
		}
		order = append(order, idx)
	}
	visit(c.Entry)

	for _, idx := range all {
		if !visited[idx] {
			visited[idx] = true
			order = append(order, idx)
		}
	}
	return order
}

func reversed(xs []cfg.BasicBlockIdx) []cfg.BasicBlockIdx {
	out := make([]cfg.BasicBlockIdx, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
