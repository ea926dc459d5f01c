package cfg

import (
	"github.com/ethanuppal/cs6120/internal/ir"
)

// Exit is the resolved form of ir.LabeledExit (§3): labels replaced by
// BasicBlockIdx handles.
type Exit struct {
	Kind ir.ExitKind

	// Unconditional
	Target BasicBlockIdx

	// Conditional
	Cond        string
	TrueTarget  BasicBlockIdx
	FalseTarget BasicBlockIdx

	// Fallthrough: FallthroughOK reports whether FallthroughTarget is valid
	// (Fallthrough(Some(d)) vs Fallthrough(None) for the last block).
	FallthroughTarget BasicBlockIdx
	FallthroughOK     bool

	// Return
	Arg    string
	HasArg bool
}

// Successors returns the blocks this exit can transfer control to, in a
// deterministic order (true branch before false for Conditional).
func (e Exit) Successors() []BasicBlockIdx {
	switch e.Kind {
	case ir.ExitFallthrough:
		if e.FallthroughOK {
			return []BasicBlockIdx{e.FallthroughTarget}
		}
		return nil
	case ir.ExitUnconditional:
		return []BasicBlockIdx{e.Target}
	case ir.ExitConditional:
		return []BasicBlockIdx{e.TrueTarget, e.FalseTarget}
	case ir.ExitReturn:
		return nil
	default:
		return nil
	}
}

// FunctionCfg is §3's FunctionCfg: { signature, entry, vertices, edges,
// rev_edges }. Owns its blocks and edges; analyses read it and are never
// allowed to mutate it directly — only the primitives in mutate.go may
// change edges.
type FunctionCfg struct {
	Signature ir.FunctionSignature

	Entry BasicBlockIdx

	vertices map[BasicBlockIdx]*BasicBlock
	edges    map[BasicBlockIdx]Exit
	revEdges map[BasicBlockIdx][]BasicBlockIdx

	order    []BasicBlockIdx // insertion order, for deterministic iteration
	nextID   uint64
	labelSeq int
}

func newFunctionCfg(sig ir.FunctionSignature) *FunctionCfg {
	return &FunctionCfg{
		Signature: sig,
		vertices:  make(map[BasicBlockIdx]*BasicBlock),
		edges:     make(map[BasicBlockIdx]Exit),
		revEdges:  make(map[BasicBlockIdx][]BasicBlockIdx),
	}
}

// Block looks up a block by handle. The second return is false for a
// handle that was never allocated or has since been pruned.
func (c *FunctionCfg) Block(idx BasicBlockIdx) (*BasicBlock, bool) {
	b, ok := c.vertices[idx]
	return b, ok
}

// MustBlock panics if idx is not live — for call sites that have already
// established the handle is valid (a program invariant, not a user error;
// §7 treats this class of violation as a programmer contract breach).
func (c *FunctionCfg) MustBlock(idx BasicBlockIdx) *BasicBlock {
	b, ok := c.vertices[idx]
	if !ok {
		panic("cfg: handle " + idx.String() + " is not live in this FunctionCfg")
	}
	return b
}

// Exit returns the resolved exit of a block.
func (c *FunctionCfg) Exit(idx BasicBlockIdx) Exit {
	return c.edges[idx]
}

// Preds returns the predecessors of a block — exactly the blocks whose
// resolved exit names idx as a successor (§3 invariant 3).
func (c *FunctionCfg) Preds(idx BasicBlockIdx) []BasicBlockIdx {
	return append([]BasicBlockIdx(nil), c.revEdges[idx]...)
}

// Succs returns the successors of a block, per its resolved exit.
func (c *FunctionCfg) Succs(idx BasicBlockIdx) []BasicBlockIdx {
	return c.edges[idx].Successors()
}

// Blocks returns every live block handle in deterministic insertion order.
func (c *FunctionCfg) Blocks() []BasicBlockIdx {
	out := make([]BasicBlockIdx, 0, len(c.order))
	for _, idx := range c.order {
		if _, ok := c.vertices[idx]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// NumBlocks is the number of live blocks.
func (c *FunctionCfg) NumBlocks() int { return len(c.vertices) }

// addRevEdge idempotently records pred as a predecessor of succ.
func (c *FunctionCfg) addRevEdge(pred, succ BasicBlockIdx) {
	for _, p := range c.revEdges[succ] {
		if p == pred {
			return
		}
	}
	c.revEdges[succ] = append(c.revEdges[succ], pred)
}

// removeRevEdge removes pred from succ's predecessor list, if present.
func (c *FunctionCfg) removeRevEdge(pred, succ BasicBlockIdx) {
	preds := c.revEdges[succ]
	for i, p := range preds {
		if p == pred {
			c.revEdges[succ] = append(preds[:i:i], preds[i+1:]...)
			return
		}
	}
}

// isSuccessor reports whether to is among from's current resolved
// successors.
func (c *FunctionCfg) isSuccessor(from, to BasicBlockIdx) bool {
	for _, s := range c.edges[from].Successors() {
		if s == to {
			return true
		}
	}
	return false
}
