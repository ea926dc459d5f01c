package lvn

import (
	"fmt"

	"github.com/ethanuppal/cs6120/internal/ir"
)

type entry struct {
	value Value
	name  string
}

// table is the per-block value-numbering state of §4.C: the ordered value
// list, its hash index, the current variable→position map, and the
// constant-folding side table.
type table struct {
	entries   []entry
	index     map[string]int // Value.key() -> position
	varPos    map[string]int // variable name -> position
	folded    map[int]ir.Literal
	foldedTyp map[int]ir.Type
	opaqueSeq uint64
	freshSeq  int
}

func newTable() *table {
	return &table{
		index:     make(map[string]int),
		varPos:    make(map[string]int),
		folded:    make(map[int]ir.Literal),
		foldedTyp: make(map[int]ir.Type),
	}
}

func (t *table) fresh() string {
	t.freshSeq++
	return fmt.Sprintf("$lvn%d", t.freshSeq)
}

// resolveArg turns a source variable name into an argRef: an index if its
// current value is known, else the bare external name.
func (t *table) resolveArg(name string) argRef {
	if p, ok := t.varPos[name]; ok {
		return argRef{hasIndex: true, index: p}
	}
	return argRef{name: name}
}

// Run returns a rewritten copy of one basic block's instructions per §4.C
// (the input slice is left as it is): builds the
// canonical form of each instruction, merges into existing value-table
// entries where possible (emitting `id` copies), folds constant-foldable
// value ops, and renames destinations that are overwritten later in the
// block. Effect instructions are passed through with their arguments
// rewritten to canonical names.
func Run(instrs []ir.Instr) []ir.Instr {
	t := newTable()
	lastAssignment := make(map[string]int)
	for i, it := range instrs {
		if d, ok := ir.KillOf(it); ok {
			lastAssignment[d] = i
		}
	}

	out := make([]ir.Instr, 0, len(instrs))
	for i, it := range instrs {
		switch in := it.(type) {
		case ir.ConstInstr:
			out = append(out, t.handleConst(i, in, lastAssignment))
		case ir.ValueInstr:
			out = append(out, t.handleValue(i, in, lastAssignment))
		case ir.EffectInstr:
			out = append(out, t.rewriteEffect(in))
		default:
			out = append(out, it)
		}
	}
	return out
}

func (t *table) canonicalDest(i int, dest string, lastAssignment map[string]int) string {
	if i < lastAssignment[dest] {
		return t.fresh()
	}
	return dest
}

func (t *table) handleConst(i int, in ir.ConstInstr, lastAssignment map[string]int) ir.Instr {
	var v Value
	if in.Type.Kind == ir.KFloat {
		v = floatValue(in.Value.String())
	} else {
		v = otherConstValue(in.Value.String())
	}

	if p, ok := t.index[v.key()]; ok {
		t.varPos[in.Dest] = p
		return ir.ValueInstr{Dest: in.Dest, Type: in.Type, Op: ir.OpID, Args: []string{t.entries[p].name}}
	}

	name := t.canonicalDest(i, in.Dest, lastAssignment)
	p := len(t.entries)
	t.entries = append(t.entries, entry{value: v, name: name})
	t.index[v.key()] = p
	t.varPos[in.Dest] = p
	t.folded[p] = in.Value
	t.foldedTyp[p] = in.Type
	return ir.ConstInstr{Dest: name, Type: in.Type, Value: in.Value}
}

func (t *table) handleValue(i int, in ir.ValueInstr, lastAssignment map[string]int) ir.Instr {
	if ir.OpaqueOps[in.Op] {
		t.opaqueSeq++
		v := opaqueValue(t.opaqueSeq)
		name := t.canonicalDest(i, in.Dest, lastAssignment)
		p := len(t.entries)
		t.entries = append(t.entries, entry{value: v, name: name})
		t.index[v.key()] = p
		t.varPos[in.Dest] = p
		return ir.ValueInstr{Dest: name, Type: in.Type, Op: in.Op, Args: t.rewriteArgs(in.Args), Funcs: in.Funcs, Labels: in.Labels}
	}

	args := make([]argRef, len(in.Args))
	for j, a := range in.Args {
		args[j] = t.resolveArg(a)
	}
	args = sortCommutativeArgs(in.Op, args)
	v := opValue(in.Op, args)

	if p, ok := t.index[v.key()]; ok {
		t.varPos[in.Dest] = p
		return ir.ValueInstr{Dest: in.Dest, Type: in.Type, Op: ir.OpID, Args: []string{t.entries[p].name}}
	}

	if folded, ok := t.tryFold(in.Op, args); ok {
		name := t.canonicalDest(i, in.Dest, lastAssignment)
		p := len(t.entries)
		litV := Value{kind: kindOtherConst, literal: folded.String()}
		if in.Type.Kind == ir.KFloat {
			litV = floatValue(folded.String())
		}
		t.entries = append(t.entries, entry{value: litV, name: name})
		t.index[litV.key()] = p
		t.index[v.key()] = p
		t.varPos[in.Dest] = p
		t.folded[p] = folded
		t.foldedTyp[p] = in.Type
		return ir.ConstInstr{Dest: name, Type: in.Type, Value: folded}
	}

	name := t.canonicalDest(i, in.Dest, lastAssignment)
	p := len(t.entries)
	t.entries = append(t.entries, entry{value: v, name: name})
	t.index[v.key()] = p
	t.varPos[in.Dest] = p
	return ir.ValueInstr{Dest: name, Type: in.Type, Op: in.Op, Args: t.rewriteArgs(in.Args), Funcs: in.Funcs, Labels: in.Labels}
}

// tryFold attempts to evaluate an op whose every argument resolves to a
// known literal (§4.C "Constant folding"). Currently folds integer add,
// sub, mul, the integer comparisons eq, lt and gt, and the boolean and, or
// and not, which are exact regardless of evaluation order; le, ge and div
// are not folded, and float folding is skipped entirely
// to preserve the bit-exact determinism guarantee of §4.C/§9.
func (t *table) tryFold(op ir.Op, args []argRef) (ir.Literal, bool) {
	lits := make([]ir.Literal, len(args))
	for i, a := range args {
		if !a.hasIndex {
			return ir.Literal{}, false
		}
		lit, ok := t.folded[a.index]
		if !ok {
			return ir.Literal{}, false
		}
		lits[i] = lit
	}

	switch op {
	case ir.OpAdd:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewInt(lits[0].I + lits[1].I), true
	case ir.OpSub:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewInt(lits[0].I - lits[1].I), true
	case ir.OpMul:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewInt(lits[0].I * lits[1].I), true
	case ir.OpEq:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewBool(lits[0].I == lits[1].I), true
	case ir.OpLt:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewBool(lits[0].I < lits[1].I), true
	case ir.OpGt:
		if len(lits) != 2 || lits[0].Kind != ir.LitInt || lits[1].Kind != ir.LitInt {
			return ir.Literal{}, false
		}
		return ir.NewBool(lits[0].I > lits[1].I), true
	case ir.OpAnd:
		if len(lits) != 2 || lits[0].Kind != ir.LitBool || lits[1].Kind != ir.LitBool {
			return ir.Literal{}, false
		}
		return ir.NewBool(lits[0].B && lits[1].B), true
	case ir.OpOr:
		if len(lits) != 2 || lits[0].Kind != ir.LitBool || lits[1].Kind != ir.LitBool {
			return ir.Literal{}, false
		}
		return ir.NewBool(lits[0].B || lits[1].B), true
	case ir.OpNot:
		if len(lits) != 1 || lits[0].Kind != ir.LitBool {
			return ir.Literal{}, false
		}
		return ir.NewBool(!lits[0].B), true
	default:
		return ir.Literal{}, false
	}
}

// rewriteArgs maps each source argument to its current canonical name,
// leaving unresolved (external) names untouched.
func (t *table) rewriteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if p, ok := t.varPos[a]; ok {
			out[i] = t.entries[p].name
		} else {
			out[i] = a
		}
	}
	return out
}

func (t *table) rewriteEffect(in ir.EffectInstr) ir.Instr {
	return ir.EffectInstr{Op: in.Op, Args: t.rewriteArgs(in.Args), Funcs: in.Funcs, Labels: in.Labels}
}
