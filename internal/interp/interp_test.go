package interp

import (
	"bytes"
	"testing"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dce"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
	"github.com/ethanuppal/cs6120/internal/loop"
	"github.com/ethanuppal/cs6120/internal/lvn"
	"github.com/ethanuppal/cs6120/internal/ssa"
)

func build(t *testing.T, src string) *cfg.FunctionCfg {
	t.Helper()
	prog, err := ir.ParseText(src)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	c, err := cfg.Build(&prog.Functions[0], false)
	if err != nil {
		t.Fatalf("building cfg: %v", err)
	}
	return c
}

func runAndCapture(t *testing.T, c *cfg.FunctionCfg, args ...Value) (string, Value) {
	t.Helper()
	var buf bytes.Buffer
	m := New(&buf)
	m.Load(c)
	ret, err := m.Run(c.Signature.Name, args)
	if err != nil {
		t.Fatalf("running %s: %v", c.Signature.Name, err)
	}
	return buf.String(), ret
}

// §8 scenario 1: basic add & print.
func TestBasicAddAndPrint(t *testing.T) {
	c := build(t, `
@main() {
  v0: int = const 1;
  v1: int = const 2;
  v2: int = add v0 v1;
  print v2;
}
`)
	out, _ := runAndCapture(t, c)
	if out != "3\n" {
		t.Fatalf("want \"3\\n\", got %q", out)
	}
}

// §8 scenario 2: constant folding must not change the observable result.
func TestConstantFoldingPreservesBehavior(t *testing.T) {
	c := build(t, `
@main() {
  a: int = const 2;
  b: int = const 3;
  c: int = add a b;
  print c;
}
`)
	before, _ := runAndCapture(t, c)

	for _, idx := range c.Blocks() {
		blk := c.MustBlock(idx)
		blk.Instructions = lvn.Run(blk.Instructions)
	}
	linear := cfg.Linearize(c)
	linear.Body = dce.RunFunction(linear.Body)
	folded, err := cfg.Build(linear, false)
	if err != nil {
		t.Fatalf("rebuilding folded cfg: %v", err)
	}

	after, _ := runAndCapture(t, folded)
	if before != after || after != "5\n" {
		t.Fatalf("LVN+DCE changed behavior: before %q after %q", before, after)
	}
}

// §8 scenario 3: commutative CSE must not change the observable result.
func TestCommonSubexpressionPreservesBehavior(t *testing.T) {
	c := build(t, `
@main() {
  a: int = const 4;
  b: int = const 7;
  x: int = add a b;
  y: int = add b a;
  print x;
  print y;
}
`)
	before, _ := runAndCapture(t, c)

	for _, idx := range c.Blocks() {
		blk := c.MustBlock(idx)
		blk.Instructions = lvn.Run(blk.Instructions)
	}
	after, _ := runAndCapture(t, c)

	if before != after || after != "11\n11\n" {
		t.Fatalf("CSE changed behavior: before %q after %q", before, after)
	}
}

// §8 scenario 5: into-SSA then out-of-SSA must preserve the program's
// observable behavior.
func TestSSARoundTripPreservesBehavior(t *testing.T) {
	c := build(t, `
@main(cond: bool) {
  i: int = const 0;
  one: int = const 1;
  jmp .loop;
.loop:
  i: int = add i one;
  br cond .done .loop;
.done:
  print i;
}
`)
	before, _ := runAndCapture(t, c, Value{Kind: ir.KBool, B: true})

	if err := ssa.IntoSSA(c); err != nil {
		t.Fatalf("IntoSSA: %v", err)
	}
	if err := ssa.OutOfSSA(c); err != nil {
		t.Fatalf("OutOfSSA: %v", err)
	}

	after, _ := runAndCapture(t, c, Value{Kind: ir.KBool, B: true})
	if before != after || after != "1\n" {
		t.Fatalf("SSA round trip changed behavior: before %q after %q", before, after)
	}
}

// §8 scenario 6: LICM (preheader insertion plus hoisting) must not change
// the observable result.
func TestLICMPreservesBehavior(t *testing.T) {
	src := `
@main(cond: bool) {
  a: int = const 2;
  b: int = const 3;
  x: int = const 0;
  jmp .loop;
.loop:
  t: int = mul a b;
  x: int = add x t;
  br cond .done .loop;
.done:
  print x;
}
`
	before := build(t, src)
	beforeOut, _ := runAndCapture(t, before, Value{Kind: ir.KBool, B: true})

	after := build(t, src)
	doms := dom.Compute(after)
	loops := loop.DetectLoops(after, doms)
	l := loops[0]
	pre := loop.InsertPreheader(after, l)
	loop.RunLICM(after, l, pre)

	afterOut, _ := runAndCapture(t, after, Value{Kind: ir.KBool, B: true})
	if beforeOut != afterOut {
		t.Fatalf("LICM changed behavior: before %q after %q", beforeOut, afterOut)
	}
}

func TestCallBetweenFunctions(t *testing.T) {
	prog, err := ir.ParseText(`
@double(n: int): int {
  two: int = const 2;
  result: int = mul n two;
  ret result;
}
@main() {
  five: int = const 5;
  ten: int = call @double five;
  print ten;
}
`)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}

	var buf bytes.Buffer
	m := New(&buf)
	for i := range prog.Functions {
		c, err := cfg.Build(&prog.Functions[i], false)
		if err != nil {
			t.Fatalf("building cfg: %v", err)
		}
		m.Load(c)
	}

	if _, err := m.Run("main", nil); err != nil {
		t.Fatalf("running main: %v", err)
	}
	if buf.String() != "10\n" {
		t.Fatalf("want \"10\\n\", got %q", buf.String())
	}
}

func TestDivisionByZeroIsAnError(t *testing.T) {
	c := build(t, `
@main() {
  a: int = const 1;
  z: int = const 0;
  r: int = div a z;
  print r;
}
`)
	m := New(&bytes.Buffer{})
	m.Load(c)
	if _, err := m.Run("main", nil); err == nil {
		t.Fatalf("want an error dividing by zero")
	}
}
