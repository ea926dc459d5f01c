package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
)

func mustBuild(t *testing.T, src string) *cfg.FunctionCfg {
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

func findLabel(t *testing.T, c *cfg.FunctionCfg, label string) cfg.BasicBlockIdx {
	t.Helper()
	for _, idx := range c.Blocks() {
		if b := c.MustBlock(idx); b.HasLabel && b.Label == label {
			return idx
		}
	}
	t.Fatalf("no block labeled %q", label)
	return cfg.BasicBlockIdx{}
}

func TestFindBackEdgeSelfLoop(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  jmp .loop;
.loop:
  br cond .loop .done;
.done:
  ret;
}
`)
	doms := dom.Compute(c)
	loop := findLabel(t, c, "loop")
	edges := FindBackEdges(c, doms)
	require.Len(t, edges, 1, "want one self-loop back edge at .loop")
	require.Equal(t, loop, edges[0].Source)
	require.Equal(t, loop, edges[0].Header)
}

func TestDetectLoopsMergesSharedHeader(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  jmp .header;
.header:
  br cond .a .done;
.a:
  br cond .header .b;
.b:
  jmp .header;
.done:
  ret;
}
`)
	doms := dom.Compute(c)
	loops := DetectLoops(c, doms)
	require.Len(t, loops, 1, "want a single merged loop (two back edges, one header)")
	require.Len(t, loops[0].BackEdges, 2, "want 2 back edges recorded")
	header := findLabel(t, c, "header")
	a := findLabel(t, c, "a")
	b := findLabel(t, c, "b")
	for _, want := range []cfg.BasicBlockIdx{header, a, b} {
		_, in := loops[0].Body[want]
		assert.True(t, in, "want block %v in merged loop body", want)
	}
}

func TestInsertPreheaderLinksCorrectly(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  jmp .loop;
.loop:
  br cond .loop .done;
.done:
  ret;
}
`)
	doms := dom.Compute(c)
	loops := DetectLoops(c, doms)
	l := loops[0]
	pre := InsertPreheader(c, l)

	got := c.Succs(pre)
	require.Len(t, got, 1, "want preheader -> header")
	require.Equal(t, l.Header, got[0])

	entrySuccs := c.Succs(c.Entry)
	require.Len(t, entrySuccs, 1, "want entry -> preheader")
	require.Equal(t, pre, entrySuccs[0])

	preds := c.Preds(l.Header)
	foundBackEdge := false
	for _, p := range preds {
		if p == l.BackEdges[0].Source {
			foundBackEdge = true
		}
	}
	require.True(t, foundBackEdge, "want header's preds to include the back-edge source, got %v", preds)
	require.Len(t, preds, 2, "want header's preds = {preheader, back-edge source}")
}

// §8 scenario 6: t = mul a b; x = add x t; with a, b defined outside the
// loop. t = mul a b must migrate to the preheader.
func TestLICMHoistsInvariantMul(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  a: int = const 2;
  b: int = const 3;
  x: int = const 0;
  jmp .loop;
.loop:
  t: int = mul a b;
  x: int = add x t;
  br cond .loop .done;
.done:
  print x;
}
`)
	doms := dom.Compute(c)
	loops := DetectLoops(c, doms)
	l := loops[0]
	pre := InsertPreheader(c, l)

	moved := RunLICM(c, l, pre)
	require.Equal(t, 1, moved, "want exactly 1 instruction hoisted (t = mul a b)")

	preBlk := c.MustBlock(pre)
	found := false
	for _, instr := range preBlk.Instructions {
		if v, ok := instr.(ir.ValueInstr); ok && v.Op == ir.OpMul {
			found = true
		}
	}
	require.True(t, found, "want the mul in the preheader, got %#v", preBlk.Instructions)

	loopBlk := c.MustBlock(l.Header)
	for _, instr := range loopBlk.Instructions {
		if v, ok := instr.(ir.ValueInstr); ok {
			require.NotEqual(t, ir.OpMul, v.Op, "mul should have been removed from the loop body")
		}
	}
}

func TestLICMDoesNotHoistLoopVaryingAdd(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  a: int = const 2;
  b: int = const 3;
  x: int = const 0;
  jmp .loop;
.loop:
  t: int = mul a b;
  x: int = add x t;
  br cond .loop .done;
.done:
  print x;
}
`)
	doms := dom.Compute(c)
	loops := DetectLoops(c, doms)
	l := loops[0]
	pre := InsertPreheader(c, l)
	RunLICM(c, l, pre)

	loopBlk := c.MustBlock(l.Header)
	found := false
	for _, instr := range loopBlk.Instructions {
		if v, ok := instr.(ir.ValueInstr); ok && v.Op == ir.OpAdd {
			found = true
		}
	}
	require.True(t, found, "x = add x t depends on the loop-carried x; it must stay in the loop body")
}
