package cfg

import (
	"strings"

	"github.com/fatih/color"

	"github.com/ethanuppal/cs6120/internal/ir"
)

// Linearize re-flattens a FunctionCfg back into an ir.Function body, in
// block insertion order, for the passthrough mode of the CFG extractor
// (§6/§7). Each block's instructions, terminator included, are emitted as
// they stand; Linearize does not rewrite terminators from the resolved
// exits, so the printed terminators are whatever the builder and the
// mutation primitives left in the blocks.
func Linearize(c *FunctionCfg) *ir.Function {
	fn := &ir.Function{Signature: c.Signature}
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		if b.HasLabel {
			fn.Body = append(fn.Body, ir.LabelMarker{Name: b.Label})
		}
		fn.Body = append(fn.Body, b.Instructions...)
	}
	return fn
}

// PrettyPrint renders a FunctionCfg in block order with ANSI coloring:
// labels in cyan, terminators in yellow, everything else as plain text —
// matching the textual IR syntax of §6 but annotated for human reading
// (§7's CFG extractor `--mode pretty`). Coloring is a no-op when output
// isn't a terminal, per color.NoColor.
func PrettyPrint(c *FunctionCfg) string {
	label := color.New(color.FgCyan)
	term := color.New(color.FgYellow)

	var b strings.Builder
	b.WriteString("@")
	b.WriteString(c.Signature.Name)
	b.WriteString("(")
	for i, p := range c.Signature.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if c.Signature.ReturnType != nil {
		b.WriteString(": ")
		b.WriteString(c.Signature.ReturnType.String())
	}
	b.WriteString(" {\n")

	for _, idx := range c.Blocks() {
		blk := c.MustBlock(idx)
		if blk.HasLabel {
			b.WriteString(label.Sprintf(".%s:", blk.Label))
		} else {
			b.WriteString(label.Sprintf("; %s (unlabeled)", idx))
		}
		b.WriteString("\n")
		for i, instr := range blk.Instructions {
			line := strings.TrimSuffix(instrLine(instr), "\n")
			if i == blk.IndexBeforeExit() {
				b.WriteString(term.Sprint(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		b.WriteString(term.Sprintf("  ; -> %s", formatSuccessors(c.Succs(idx))))
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func instrLine(it ir.Instr) string {
	switch v := it.(type) {
	case ir.ConstInstr:
		return "  " + v.Dest + ": " + v.Type.String() + " = const " + v.Value.String() + ";"
	case ir.ValueInstr:
		var ops strings.Builder
		for _, f := range v.Funcs {
			ops.WriteString(" @" + f)
		}
		for _, a := range v.Args {
			ops.WriteString(" " + a)
		}
		for _, l := range v.Labels {
			ops.WriteString(" ." + l)
		}
		return "  " + v.Dest + ": " + v.Type.String() + " = " + string(v.Op) + ops.String() + ";"
	case ir.EffectInstr:
		var ops strings.Builder
		for _, f := range v.Funcs {
			ops.WriteString(" @" + f)
		}
		for _, a := range v.Args {
			ops.WriteString(" " + a)
		}
		for _, l := range v.Labels {
			ops.WriteString(" ." + l)
		}
		return "  " + string(v.Op) + ops.String() + ";"
	default:
		return "  ; <unknown instruction>"
	}
}

func formatSuccessors(succs []BasicBlockIdx) string {
	if len(succs) == 0 {
		return "(none)"
	}
	names := make([]string, len(succs))
	for i, s := range succs {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
