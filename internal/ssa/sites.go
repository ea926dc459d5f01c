// Package ssa implements the get/set (upsilon) SSA round-trip of §4.G:
// phi materialization via iterated dominance-frontier closure, renaming by
// dominator-tree DFS, strict-SSA validation, and de-SSA.
package ssa

import (
	"sort"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// varInfo is the per-variable bookkeeping of §4.G step 1: its declared type
// (first-seen wins) and every block containing a defining instruction.
type varInfo struct {
	typ      ir.Type
	defSites dataflow.Set[cfg.BasicBlockIdx]
}

// collectDefSites scans every block's instructions for Const/Value
// destinations, building the def-site table step 1 requires.
func collectDefSites(c *cfg.FunctionCfg) map[string]*varInfo {
	out := make(map[string]*varInfo)
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		for _, instr := range b.Instructions {
			d, ok := instr.Kill()
			if !ok {
				continue
			}
			typ := typeOf(instr)
			info, exists := out[d]
			if !exists {
				info = &varInfo{typ: typ, defSites: dataflow.NewSet[cfg.BasicBlockIdx]()}
				out[d] = info
			}
			info.defSites[idx] = struct{}{}
		}
	}
	return out
}

func typeOf(instr ir.Instr) ir.Type {
	switch v := instr.(type) {
	case ir.ConstInstr:
		return v.Type
	case ir.ValueInstr:
		return v.Type
	default:
		return ir.Int
	}
}

// insertParamCopies implements §4.G step 4: each parameter is simulated as
// a local by prepending a self-referential `id` copy at the head of the
// entry block, so renaming treats parameter names exactly like any other
// definition.
func insertParamCopies(c *cfg.FunctionCfg) {
	params := c.Signature.Arguments
	if len(params) == 0 {
		return
	}
	entry := c.MustBlock(c.Entry)
	copies := make([]ir.Instr, len(params))
	for i, p := range params {
		copies[i] = ir.ValueInstr{Dest: p.Name, Type: p.Type, Op: ir.OpID, Args: []string{p.Name}}
	}
	entry.Instructions = append(append([]ir.Instr(nil), copies...), entry.Instructions...)
}

// computePhiPoints runs the iterated dominance-frontier closure of §4.G
// step 2 for every variable, returning both directions of the resulting
// relation: which blocks need a `get` for each variable, and which
// variables need a `get` at each block.
func computePhiPoints(varInfos map[string]*varInfo, fronts dom.Frontiers) (byVar map[string]dataflow.Set[cfg.BasicBlockIdx], byBlock map[cfg.BasicBlockIdx]dataflow.Set[string]) {
	byVar = make(map[string]dataflow.Set[cfg.BasicBlockIdx], len(varInfos))
	byBlock = make(map[cfg.BasicBlockIdx]dataflow.Set[string])

	names := make([]string, 0, len(varInfos))
	for name := range varInfos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := varInfos[name]
		result := dataflow.NewSet[cfg.BasicBlockIdx]()
		worklist := make([]cfg.BasicBlockIdx, 0, len(info.defSites))
		for b := range info.defSites {
			worklist = append(worklist, b)
		}

		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for s := range fronts[b] {
				if _, already := result[s]; already {
					continue
				}
				result[s] = struct{}{}
				worklist = append(worklist, s)
			}
		}

		byVar[name] = result
		for b := range result {
			if byBlock[b] == nil {
				byBlock[b] = dataflow.NewSet[string]()
			}
			byBlock[b][name] = struct{}{}
		}
	}
	return byVar, byBlock
}

// insertPhis implements §4.G step 3: at the head of each block needing a
// get for v, prepend `Value{dest=v, op=get, type=typeof(v)}`, in sorted
// variable-name order for determinism.
func insertPhis(c *cfg.FunctionCfg, byBlock map[cfg.BasicBlockIdx]dataflow.Set[string], varInfos map[string]*varInfo) {
	for idx, vars := range byBlock {
		names := dataflow.SortedStrings(vars)
		b := c.MustBlock(idx)
		gets := make([]ir.Instr, len(names))
		for i, name := range names {
			gets[i] = ir.ValueInstr{Dest: name, Type: varInfos[name].typ, Op: ir.OpGet}
		}
		b.Instructions = append(append([]ir.Instr(nil), gets...), b.Instructions...)
	}
}
