// Package cfg builds and maintains control-flow graphs (§3, §4.B) from a
// flat ir.Function body: basic blocks with resolved exits, a predecessor
// index, and the three edge-mutation primitives (add_block,
// set_unconditional_edge, reorient_edge) that every other transform in this
// module goes through to keep edges and rev-edges consistent.
package cfg

import (
	"fmt"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// BasicBlockIdx is a stable, copyable handle to a block within one
// FunctionCfg. IDs are assigned from a monotonically increasing counter and
// never reused within a FunctionCfg's lifetime, which is what gives the
// handle its "generational" safety (§3, §9): once a block is pruned, its
// idx is simply absent from the CFG's vertex map forever — there is no way
// a later, unrelated block can collide with a stale handle.
type BasicBlockIdx struct {
	id uint64
}

func (idx BasicBlockIdx) String() string { return fmt.Sprintf("b%d", idx.id) }

// IsZero reports whether idx is the zero value (never a valid handle — real
// handles start at id 1).
func (idx BasicBlockIdx) IsZero() bool { return idx.id == 0 }

// BasicBlock is §3's BasicBlock: instructions in execution order plus the
// build-time (label-based) exit. Only the entry block may lack a label in
// well-formed input; the builder preserves whatever the block-boundary rule
// of §4.B actually produces, including unreachable unlabeled blocks that
// pruning is meant to remove (§8 boundary cases).
type BasicBlock struct {
	IsEntry      bool
	HasLabel     bool
	Label        string
	Instructions []ir.Instr
	Exit         ir.LabeledExit
}

// IndexBeforeExit is the helper of §3: len(instructions) on fallthrough,
// else len-1 (the terminator's index). This is where SSA's upsilon (`set`)
// placement and LICM's "last instruction" bookkeeping insert relative to.
func (b *BasicBlock) IndexBeforeExit() int {
	if b.Exit.Kind == ir.ExitFallthrough {
		return len(b.Instructions)
	}
	return len(b.Instructions) - 1
}
