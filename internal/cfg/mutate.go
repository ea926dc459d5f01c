package cfg

import (
	"fmt"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// AddBlock is the add_block primitive of §3/§9: installs a fresh, unlinked
// block under a never-reused handle. The caller must promptly link it in
// with SetUnconditionalEdge/ReorientEdge — until then its exit is
// Fallthrough(None), satisfying invariant 2 ("edges[idx] is defined") with
// the most conservative possible edge.
func (c *FunctionCfg) AddBlock(label string) BasicBlockIdx {
	b := &BasicBlock{Exit: ir.Fallthrough()}
	if label != "" {
		b.HasLabel = true
		b.Label = label
	}
	idx := c.allocate(b)
	c.edges[idx] = Exit{Kind: ir.ExitFallthrough}
	return idx
}

// ensureLabel returns idx's label, synthesizing one disjoint from any
// surface-syntax identifier (using '$', which the grammar of §6 never
// produces) if it doesn't have one yet.
func (c *FunctionCfg) ensureLabel(idx BasicBlockIdx) string {
	b := c.MustBlock(idx)
	if b.HasLabel {
		return b.Label
	}
	c.labelSeq++
	b.HasLabel = true
	b.Label = fmt.Sprintf("L$%d", c.labelSeq)
	return b.Label
}

// syncTerminator rewrites b's last instruction (if any) to match b.Exit,
// keeping invariant 1 of §3 (terminator operands match the resolved exit).
// Fallthrough blocks have no terminator to sync.
func syncTerminator(b *BasicBlock) {
	if len(b.Instructions) == 0 {
		return
	}
	idx := b.IndexBeforeExit()
	if idx < 0 || idx >= len(b.Instructions) {
		return
	}
	eff, ok := b.Instructions[idx].(ir.EffectInstr)
	if !ok {
		return
	}
	switch b.Exit.Kind {
	case ir.ExitUnconditional:
		if eff.Op == ir.OpJmp {
			eff.Labels = []string{b.Exit.Label}
			b.Instructions[idx] = eff
		}
	case ir.ExitConditional:
		if eff.Op == ir.OpBr {
			eff.Args = []string{b.Exit.Cond}
			eff.Labels = []string{b.Exit.TrueLabel, b.Exit.FalseLabel}
			b.Instructions[idx] = eff
		}
	case ir.ExitReturn:
		if eff.Op == ir.OpRet {
			if b.Exit.HasArg {
				eff.Args = []string{b.Exit.Arg}
			} else {
				eff.Args = nil
			}
			b.Instructions[idx] = eff
		}
	}
}

// ReorientEdge is the reorient_edge primitive of §4.B: rewrites the
// terminator of start (and the resolved edge) so that an edge formerly
// targeting oldEnd now targets newEnd. No-op if start's exit is Return.
// Precondition: the CFG has no fallthroughs (call MakeFallthroughsExplicit
// first).
func (c *FunctionCfg) ReorientEdge(start, oldEnd, newEnd BasicBlockIdx) {
	b := c.MustBlock(start)
	ex := c.edges[start]
	if ex.Kind == ir.ExitReturn {
		return
	}

	newLabel := c.ensureLabel(newEnd)
	switch ex.Kind {
	case ir.ExitUnconditional:
		ex.Target = newEnd
		b.Exit.Label = newLabel
	case ir.ExitConditional:
		if ex.TrueTarget == oldEnd {
			ex.TrueTarget = newEnd
			b.Exit.TrueLabel = newLabel
		}
		if ex.FalseTarget == oldEnd {
			ex.FalseTarget = newEnd
			b.Exit.FalseLabel = newLabel
		}
	case ir.ExitFallthrough:
		ex.FallthroughTarget = newEnd
		ex.FallthroughOK = true
	}
	syncTerminator(b)
	c.edges[start] = ex

	if !c.isSuccessor(start, oldEnd) {
		c.removeRevEdge(start, oldEnd)
	}
	c.addRevEdge(start, newEnd)
}

// SetUnconditionalEdge is the set_unconditional_edge primitive of §4.B:
// writes or overwrites start's trailing jmp so that it unconditionally
// targets end. Precondition: start.exit is Fallthrough or Unconditional.
func (c *FunctionCfg) SetUnconditionalEdge(start, end BasicBlockIdx) {
	b := c.MustBlock(start)
	ex := c.edges[start]
	oldSuccessors := ex.Successors()

	label := c.ensureLabel(end)
	b.Exit = ir.Unconditional(label)
	jmp := ir.EffectInstr{Op: ir.OpJmp, Labels: []string{label}}
	if n := len(b.Instructions); n > 0 {
		if last, ok := b.Instructions[n-1].(ir.EffectInstr); ok && last.Op == ir.OpJmp {
			b.Instructions[n-1] = jmp
		} else {
			b.Instructions = append(b.Instructions, jmp)
		}
	} else {
		b.Instructions = append(b.Instructions, jmp)
	}

	c.edges[start] = Exit{Kind: ir.ExitUnconditional, Target: end}
	for _, old := range oldSuccessors {
		if old != end {
			c.removeRevEdge(start, old)
		}
	}
	c.addRevEdge(start, end)
}

// MakeFallthroughsExplicit rewrites every Fallthrough exit into an explicit
// jmp (or a no-argument ret for the function's final fallthrough), per
// §4.B. Postcondition: no block has a fallthrough exit.
func (c *FunctionCfg) MakeFallthroughsExplicit() {
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		ex := c.edges[idx]
		if ex.Kind != ir.ExitFallthrough {
			continue
		}
		if ex.FallthroughOK {
			label := c.ensureLabel(ex.FallthroughTarget)
			b.Instructions = append(b.Instructions, ir.EffectInstr{Op: ir.OpJmp, Labels: []string{label}})
			b.Exit = ir.Unconditional(label)
			c.edges[idx] = Exit{Kind: ir.ExitUnconditional, Target: ex.FallthroughTarget}
		} else {
			b.Instructions = append(b.Instructions, ir.EffectInstr{Op: ir.OpRet})
			b.Exit = ir.ReturnExit("", false)
			c.edges[idx] = Exit{Kind: ir.ExitReturn, HasArg: false}
		}
	}
}
