package ir

import "strings"

// PrintProgram renders a Program in the textual IR syntax of §6. Output is
// deterministic: instruction and import order is preserved from input,
// never resorted (§5 — only user-visible analysis *sets* get sorted before
// printing, not the IR itself).
func PrintProgram(p *Program) string {
	var b strings.Builder
	for _, imp := range p.Imports {
		b.WriteString(printImport(imp))
		b.WriteString("\n")
	}
	if len(p.Imports) > 0 {
		b.WriteString("\n")
	}
	for i, fn := range p.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(PrintFunction(&fn))
	}
	return b.String()
}

func printImport(imp Import) string {
	var b strings.Builder
	b.WriteString("from \"")
	b.WriteString(imp.Path)
	b.WriteString("\" import @")
	b.WriteString(imp.Name)
	if imp.Alias != "" {
		b.WriteString(" as @")
		b.WriteString(imp.Alias)
	}
	b.WriteString(";")
	return b.String()
}

// PrintFunction renders one function's signature and body.
func PrintFunction(f *Function) string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(f.Signature.Name)
	b.WriteString("(")
	for i, p := range f.Signature.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if f.Signature.ReturnType != nil {
		b.WriteString(": ")
		b.WriteString(f.Signature.ReturnType.String())
	}
	b.WriteString(" {\n")
	for _, item := range f.Body {
		b.WriteString(printItem(item))
	}
	b.WriteString("}\n")
	return b.String()
}

func printItem(item Item) string {
	switch it := item.(type) {
	case LabelMarker:
		return "." + it.Name + ":\n"
	case ConstInstr:
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(it.Dest)
		b.WriteString(": ")
		b.WriteString(it.Type.String())
		b.WriteString(" = const ")
		b.WriteString(it.Value.String())
		b.WriteString(";\n")
		return b.String()
	case ValueInstr:
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(it.Dest)
		b.WriteString(": ")
		b.WriteString(it.Type.String())
		b.WriteString(" = ")
		b.WriteString(string(it.Op))
		printOperands(&b, it.Funcs, it.Args, it.Labels)
		b.WriteString(";\n")
		return b.String()
	case EffectInstr:
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(string(it.Op))
		printOperands(&b, it.Funcs, it.Args, it.Labels)
		b.WriteString(";\n")
		return b.String()
	default:
		return "  ; <unknown item>\n"
	}
}

// printOperands writes the operand list in the canonical order funcs, args,
// labels — e.g. `call @f a b`, `br cond .t .f`, `jmp .l`.
func printOperands(b *strings.Builder, funcs, args, labels []string) {
	for _, f := range funcs {
		b.WriteString(" @")
		b.WriteString(f)
	}
	for _, a := range args {
		b.WriteString(" ")
		b.WriteString(a)
	}
	for _, l := range labels {
		b.WriteString(" .")
		b.WriteString(l)
	}
}
