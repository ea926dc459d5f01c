package cfg

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// rawBlock is a block as produced by the block-boundary rule of §4.B,
// before label resolution.
type rawBlock struct {
	isEntry  bool
	hasLabel bool
	label    string
	instrs   []ir.Instr
	exit     ir.LabeledExit
}

// Build turns a flat ir.Function body into a FunctionCfg, per §4.B: block
// boundaries, label resolution, predecessor index, and (if prune) dropping
// of blocks unreachable from the entry.
func Build(fn *ir.Function, prune bool) (*FunctionCfg, error) {
	raws, err := splitBlocks(fn.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "building CFG for function %s", fn.Signature.Name)
	}

	labelIdx := make(map[string]int)
	for i, rb := range raws {
		if rb.hasLabel {
			if _, dup := labelIdx[rb.label]; dup {
				return nil, fmt.Errorf("building CFG for function %s: duplicate label %q", fn.Signature.Name, rb.label)
			}
			labelIdx[rb.label] = i
		}
	}

	c := newFunctionCfg(fn.Signature)
	handles := make([]BasicBlockIdx, len(raws))
	for i, rb := range raws {
		idx := c.allocate(&BasicBlock{
			IsEntry:      rb.isEntry,
			HasLabel:     rb.hasLabel,
			Label:        rb.label,
			Instructions: rb.instrs,
			Exit:         rb.exit,
		})
		handles[i] = idx
		if rb.isEntry {
			c.Entry = idx
		}
	}

	for i, rb := range raws {
		resolved, err := resolveExit(rb.exit, i, raws, labelIdx, handles, fn.Signature.Name)
		if err != nil {
			return nil, err
		}
		c.edges[handles[i]] = resolved
		for _, s := range resolved.Successors() {
			c.addRevEdge(handles[i], s)
		}
	}

	if prune {
		c.pruneUnreachable()
	}
	return c, nil
}

// splitBlocks applies the block-boundary rule of §4.B to a flat instruction
// stream.
func splitBlocks(body []ir.Item) ([]*rawBlock, error) {
	var blocks []*rawBlock
	current := &rawBlock{isEntry: true}
	finish := func(exit ir.LabeledExit) {
		current.exit = exit
		blocks = append(blocks, current)
		current = &rawBlock{}
	}

	for _, item := range body {
		switch it := item.(type) {
		case ir.LabelMarker:
			if len(current.instrs) > 0 || current.hasLabel {
				finish(ir.Fallthrough())
			}
			current.hasLabel = true
			current.label = it.Name
		case ir.EffectInstr:
			switch it.Op {
			case ir.OpJmp:
				if len(it.Labels) != 1 || len(it.Args) != 0 {
					return nil, fmt.Errorf("malformed jmp: want exactly 1 label and 0 args, got %d labels %d args", len(it.Labels), len(it.Args))
				}
				current.instrs = append(current.instrs, it)
				finish(ir.Unconditional(it.Labels[0]))
			case ir.OpBr:
				if len(it.Args) != 1 || len(it.Labels) != 2 {
					return nil, fmt.Errorf("malformed br: want exactly 1 arg and 2 labels, got %d args %d labels", len(it.Args), len(it.Labels))
				}
				current.instrs = append(current.instrs, it)
				finish(ir.Conditional(it.Args[0], it.Labels[0], it.Labels[1]))
			case ir.OpRet:
				if len(it.Labels) != 0 || len(it.Args) > 1 {
					return nil, fmt.Errorf("malformed ret: want at most 1 arg and 0 labels, got %d args %d labels", len(it.Args), len(it.Labels))
				}
				current.instrs = append(current.instrs, it)
				hasArg := len(it.Args) == 1
				var arg string
				if hasArg {
					arg = it.Args[0]
				}
				finish(ir.ReturnExit(arg, hasArg))
			default:
				current.instrs = append(current.instrs, it)
			}
		case ir.Instr:
			current.instrs = append(current.instrs, it)
		default:
			return nil, fmt.Errorf("unrecognized body item %T", item)
		}
	}
	// Finish with the residual block, even if empty.
	current.exit = ir.Fallthrough()
	blocks = append(blocks, current)
	return blocks, nil
}

// resolveExit resolves one block's LabeledExit to an Exit, per §4.B's label
// resolution: Fallthrough resolves to the lexical successor (or None for
// the last block); Unconditional/Conditional labels are looked up; unknown
// labels are fatal.
func resolveExit(le ir.LabeledExit, i int, raws []*rawBlock, labelIdx map[string]int, handles []BasicBlockIdx, fnName string) (Exit, error) {
	lookup := func(label string) (BasicBlockIdx, error) {
		j, ok := labelIdx[label]
		if !ok {
			return BasicBlockIdx{}, fmt.Errorf("function %s: jump to unknown label %q", fnName, label)
		}
		return handles[j], nil
	}

	switch le.Kind {
	case ir.ExitFallthrough:
		if i+1 < len(raws) {
			return Exit{Kind: ir.ExitFallthrough, FallthroughTarget: handles[i+1], FallthroughOK: true}, nil
		}
		return Exit{Kind: ir.ExitFallthrough}, nil
	case ir.ExitUnconditional:
		t, err := lookup(le.Label)
		if err != nil {
			return Exit{}, err
		}
		return Exit{Kind: ir.ExitUnconditional, Target: t}, nil
	case ir.ExitConditional:
		tt, err := lookup(le.TrueLabel)
		if err != nil {
			return Exit{}, err
		}
		ft, err := lookup(le.FalseLabel)
		if err != nil {
			return Exit{}, err
		}
		return Exit{Kind: ir.ExitConditional, Cond: le.Cond, TrueTarget: tt, FalseTarget: ft}, nil
	case ir.ExitReturn:
		return Exit{Kind: ir.ExitReturn, Arg: le.Arg, HasArg: le.HasArg}, nil
	default:
		return Exit{}, fmt.Errorf("function %s: unrecognized exit kind", fnName)
	}
}

// allocate installs a new block under a fresh, never-reused handle.
func (c *FunctionCfg) allocate(b *BasicBlock) BasicBlockIdx {
	c.nextID++
	idx := BasicBlockIdx{id: c.nextID}
	c.vertices[idx] = b
	c.order = append(c.order, idx)
	return idx
}

// pruneUnreachable keeps the entry and every block reachable from it via
// forward edges, dropping the rest (§4.B "Pruning").
func (c *FunctionCfg) pruneUnreachable() {
	reachable := map[BasicBlockIdx]bool{c.Entry: true}
	worklist := []BasicBlockIdx{c.Entry}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, s := range c.edges[cur].Successors() {
			if !reachable[s] {
				reachable[s] = true
				worklist = append(worklist, s)
			}
		}
	}

	for idx := range c.vertices {
		if !reachable[idx] {
			delete(c.vertices, idx)
			delete(c.edges, idx)
			delete(c.revEdges, idx)
		}
	}
	for idx, preds := range c.revEdges {
		kept := preds[:0:0]
		for _, p := range preds {
			if reachable[p] {
				kept = append(kept, p)
			}
		}
		c.revEdges[idx] = kept
	}
	newOrder := c.order[:0:0]
	for _, idx := range c.order {
		if reachable[idx] {
			newOrder = append(newOrder, idx)
		}
	}
	c.order = newOrder
}
