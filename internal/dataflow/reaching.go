package dataflow

import "github.com/ethanuppal/cs6120/internal/cfg"

// DefKind tags a Definition's origin.
type DefKind int

const (
	// DefArgument is the pseudo-definition every function parameter
	// contributes at the entry block, per §4.E.
	DefArgument DefKind = iota
	DefInstr
)

// Definition is the reaching-definitions fact type of §4.E:
// (name, value_tag, block_idx, instr_idx).
type Definition struct {
	Name  string
	Kind  DefKind
	Block cfg.BasicBlockIdx
	Instr int // -1 for DefArgument
}

// ReachingDefinitions runs the forward reaching-definitions instance of
// §4.E over c, seeding the entry block with one DefArgument per parameter.
func ReachingDefinitions(c *cfg.FunctionCfg) map[cfg.BasicBlockIdx]Set[Definition] {
	entry := NewSet[Definition]()
	for _, p := range c.Signature.Arguments {
		entry[Definition{Name: p.Name, Kind: DefArgument, Block: c.Entry, Instr: -1}] = struct{}{}
	}

	return Solve(c, Forward, entry, Union[Definition], reachingTransfer)
}

// reachingTransfer walks a block forward: each killing instruction removes
// every prior Definition of that name from the working set and installs
// its own.
func reachingTransfer(c *cfg.FunctionCfg, idx cfg.BasicBlockIdx, in Set[Definition]) Set[Definition] {
	b := c.MustBlock(idx)
	working := make(Set[Definition], len(in))
	for k := range in {
		working[k] = struct{}{}
	}

	for i, instr := range b.Instructions {
		d, ok := instr.Kill()
		if !ok {
			continue
		}
		for k := range working {
			if k.Name == d {
				delete(working, k)
			}
		}
		working[Definition{Name: d, Kind: DefInstr, Block: idx, Instr: i}] = struct{}{}
	}
	return working
}
