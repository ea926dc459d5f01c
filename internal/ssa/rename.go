package ssa

import (
	"fmt"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// renamer carries the dominator-tree-DFS renaming state of §4.G step 5: a
// stack of renamed names per original variable, a per-function record of
// which original names were ever read without a dominating definition
// (step 6), and the phi-insertion relation needed for upsilon placement.
type renamer struct {
	c        *cfg.FunctionCfg
	tree     *dom.Tree
	byBlock  map[cfg.BasicBlockIdx]dataflow.Set[string]
	varInfos map[string]*varInfo

	stacks map[string][]string
	undef  map[string]ir.Type
}

// phiName is the deterministic scheme of §4.G step 5: since a block has at
// most one `get` per variable and gets are always prepended first, that
// get's renamed local number is always 1 — so the name any predecessor
// needs to `set` is computable without having renamed the successor yet.
func phiName(variable string, block cfg.BasicBlockIdx) string {
	return fmt.Sprintf("%s.%s.1", variable, block.String())
}

func (r *renamer) current(name string) (string, bool) {
	stack := r.stacks[name]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

// undefToken returns (and, on first use, remembers) the token standing in
// for a use of name that no dominating definition reaches.
func (r *renamer) undefToken(name string) string {
	if _, ok := r.undef[name]; !ok {
		typ := ir.Int
		if info, ok := r.varInfos[name]; ok {
			typ = info.typ
		}
		r.undef[name] = typ
	}
	return name + ".undef"
}

// rename walks the dominator tree from idx, renaming definitions and uses
// in place and placing upsilon (`set`) writes for every successor's phis.
func (r *renamer) rename(idx cfg.BasicBlockIdx) {
	b := r.c.MustBlock(idx)
	blockCounters := make(map[string]int)
	pushed := make([]string, 0, len(b.Instructions))

	for i, instr := range b.Instructions {
		rewritten := r.rewriteUses(instr)

		if d, ok := rewritten.Kill(); ok {
			blockCounters[d]++
			newName := fmt.Sprintf("%s.%s.%d", d, idx.String(), blockCounters[d])
			rewritten = withDest(rewritten, newName)
			r.stacks[d] = append(r.stacks[d], newName)
			pushed = append(pushed, d)
		}
		b.Instructions[i] = rewritten
	}

	var upsilons []ir.Instr
	for _, s := range r.c.Succs(idx) {
		vars := dataflow.SortedStrings(r.byBlock[s])
		for _, v := range vars {
			source, ok := r.current(v)
			if !ok {
				source = r.undefToken(v)
			}
			upsilons = append(upsilons, ir.EffectInstr{Op: ir.OpSet, Args: []string{phiName(v, s), source}})
		}
	}
	if len(upsilons) > 0 {
		at := b.IndexBeforeExit()
		b.Instructions = append(b.Instructions[:at:at], append(upsilons, b.Instructions[at:]...)...)
	}

	for _, child := range r.tree.Children[idx] {
		r.rename(child)
	}

	for _, name := range pushed {
		r.stacks[name] = r.stacks[name][:len(r.stacks[name])-1]
	}
}

// rewriteUses rewrites every source-variable reference in instr to its
// current renamed name, recording an undefined-use token for any name with
// no live definition on the dominator-tree path so far.
func (r *renamer) rewriteUses(instr ir.Instr) ir.Instr {
	switch v := instr.(type) {
	case ir.ConstInstr:
		return v
	case ir.ValueInstr:
		v.Args = r.rewriteNames(v.Args)
		return v
	case ir.EffectInstr:
		v.Args = r.rewriteNames(v.Args)
		return v
	default:
		return instr
	}
}

func (r *renamer) rewriteNames(names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, len(names))
	for i, n := range names {
		if cur, ok := r.current(n); ok {
			out[i] = cur
		} else {
			out[i] = r.undefToken(n)
		}
	}
	return out
}

// withDest returns instr with its destination replaced by newDest.
func withDest(instr ir.Instr, newDest string) ir.Instr {
	switch v := instr.(type) {
	case ir.ConstInstr:
		v.Dest = newDest
		return v
	case ir.ValueInstr:
		v.Dest = newDest
		return v
	default:
		return instr
	}
}
