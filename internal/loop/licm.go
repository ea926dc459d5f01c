package loop

import (
	"sort"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// loc names one instruction by its block and position.
type loc struct {
	block cfg.BasicBlockIdx
	index int
}

// neverInvariant is the set of ops §4.H excludes outright: calls, memory
// allocation, and phi-like get (store/free are Effect instructions and
// never candidates to begin with, since LICM only ever moves
// destination-bearing instructions).
var neverInvariant = map[ir.Op]bool{
	ir.OpCall: true, ir.OpAlloc: true, ir.OpGet: true,
}

// markInvariant runs the fixpoint of §4.H "Loop-invariant marking":
// a Const is always invariant; a Value op is invariant iff every argument
// either has every reaching definition outside the loop body, or has
// exactly one reaching definition that is itself already marked invariant.
func markInvariant(c *cfg.FunctionCfg, l *Loop, reaching map[cfg.BasicBlockIdx]dataflow.Set[dataflow.Definition]) map[loc]bool {
	invariant := make(map[loc]bool)
	body := l.SortedBody(c)

	for {
		changed := false
		for _, b := range body {
			blk := c.MustBlock(b)
			for i, instr := range blk.Instructions {
				here := loc{b, i}
				if invariant[here] {
					continue
				}
				switch v := instr.(type) {
				case ir.ConstInstr:
					invariant[here] = true
					changed = true
				case ir.ValueInstr:
					if neverInvariant[v.Op] {
						continue
					}
					if argsAreInvariant(v.Args, b, l, reaching, invariant) {
						invariant[here] = true
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return invariant
}

func argsAreInvariant(args []string, b cfg.BasicBlockIdx, l *Loop, reaching map[cfg.BasicBlockIdx]dataflow.Set[dataflow.Definition], invariant map[loc]bool) bool {
	in := reaching[b]
	for _, arg := range args {
		var defs []dataflow.Definition
		for d := range in {
			if d.Name == arg {
				defs = append(defs, d)
			}
		}
		if !argSatisfied(defs, l, invariant) {
			return false
		}
	}
	return true
}

func argSatisfied(defs []dataflow.Definition, l *Loop, invariant map[loc]bool) bool {
	if len(defs) == 0 {
		return false
	}
	allOutside := true
	for _, d := range defs {
		if _, in := l.Body[d.Block]; in {
			allOutside = false
			break
		}
	}
	if allOutside {
		return true
	}
	if len(defs) == 1 && defs[0].Kind == dataflow.DefInstr {
		return invariant[loc{defs[0].Block, defs[0].Instr}]
	}
	return false
}

// isSafeToMove checks the three motion-safety conditions of §4.H for the
// candidate at `here`, destined `dest`.
func isSafeToMove(c *cfg.FunctionCfg, l *Loop, doms dom.Sets, here loc, dest string) bool {
	defCount := 0
	for _, b := range l.SortedBody(c) {
		for _, instr := range c.MustBlock(b).Instructions {
			if d, ok := instr.Kill(); ok && d == dest {
				defCount++
			}
		}
	}
	if defCount != 1 {
		return false
	}

	for _, u := range l.SortedBody(c) {
		for _, instr := range c.MustBlock(u).Instructions {
			for _, g := range instr.Gen() {
				if g == dest && !doms.Dominates(here.block, u) {
					return false
				}
			}
		}
	}

	for x := range l.Exits(c) {
		if _, ok := doms[x]; !ok {
			continue
		}
		if !doms.Dominates(here.block, x) {
			return false
		}
	}
	return true
}

// RunLICM repeatedly marks loop-invariant instructions and migrates every
// one that passes the motion-safety conditions into the preheader, until a
// pass moves nothing. It returns the total number of instructions moved.
func RunLICM(c *cfg.FunctionCfg, l *Loop, preheader cfg.BasicBlockIdx) int {
	total := 0
	for {
		doms := dom.Compute(c)
		reaching := dataflow.ReachingDefinitions(c)
		invariant := markInvariant(c, l, reaching)

		var candidates []loc
		for _, b := range l.SortedBody(c) {
			blk := c.MustBlock(b)
			for i, instr := range blk.Instructions {
				here := loc{b, i}
				if !invariant[here] {
					continue
				}
				d, ok := instr.Kill()
				if !ok {
					continue
				}
				if isSafeToMove(c, l, doms, here, d) {
					candidates = append(candidates, here)
				}
			}
		}
		if len(candidates) == 0 {
			return total
		}
		moveBatch(c, preheader, candidates)
		total += len(candidates)
	}
}

// moveBatch removes every candidate instruction from its block and
// prepends them all to the preheader in their original relative order,
// per §4.H "preserving order among a batch by iterating from back to
// front" (to keep earlier indices in a block valid while removing later
// ones).
func moveBatch(c *cfg.FunctionCfg, preheader cfg.BasicBlockIdx, candidates []loc) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].block != candidates[j].block {
			return candidates[i].block.String() < candidates[j].block.String()
		}
		return candidates[i].index < candidates[j].index
	})

	moved := make([]ir.Instr, len(candidates))
	byBlock := make(map[cfg.BasicBlockIdx][]int)
	posInMoved := make(map[loc]int, len(candidates))
	for i, cand := range candidates {
		byBlock[cand.block] = append(byBlock[cand.block], cand.index)
		posInMoved[cand] = i
	}

	for block, idxs := range byBlock {
		sort.Sort(sort.Reverse(sort.IntSlice(idxs)))
		blk := c.MustBlock(block)
		for _, i := range idxs {
			moved[posInMoved[loc{block, i}]] = blk.Instructions[i]
			blk.Instructions = append(blk.Instructions[:i:i], blk.Instructions[i+1:]...)
		}
	}

	preBlk := c.MustBlock(preheader)
	preBlk.Instructions = append(append([]ir.Instr(nil), moved...), preBlk.Instructions...)
}
