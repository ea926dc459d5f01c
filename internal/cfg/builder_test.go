package cfg

import (
	"strings"
	"testing"

	"github.com/ethanuppal/cs6120/internal/ir"
)

func mustParseFunc(t *testing.T, src string) *ir.Function {
	t.Helper()
	prog, err := ir.ParseText(src)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("want 1 function, got %d", len(prog.Functions))
	}
	return &prog.Functions[0]
}

func TestBuildStraightLine(t *testing.T) {
	fn := mustParseFunc(t, `
@main() {
  a: int = const 1;
  b: int = const 2;
  c: int = add a b;
  print c;
}
`)
	c, err := Build(fn, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.NumBlocks() != 1 {
		t.Fatalf("want 1 block, got %d", c.NumBlocks())
	}
	if c.Exit(c.Entry).Kind != ir.ExitFallthrough {
		t.Errorf("want fallthrough exit with no target, got %v", c.Exit(c.Entry).Kind)
	}
	if len(c.Succs(c.Entry)) != 0 {
		t.Errorf("want no successors on final fallthrough, got %v", c.Succs(c.Entry))
	}
}

func TestBuildBranching(t *testing.T) {
	fn := mustParseFunc(t, `
@main(cond: bool) {
  br cond .then .else;
.then:
  x: int = const 1;
  jmp .join;
.else:
  x: int = const 2;
  jmp .join;
.join:
  print x;
}
`)
	c, err := Build(fn, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.NumBlocks() != 4 {
		t.Fatalf("want 4 blocks, got %d", c.NumBlocks())
	}
	if len(c.Succs(c.Entry)) != 2 {
		t.Fatalf("want 2 successors from entry, got %d", len(c.Succs(c.Entry)))
	}
	var join BasicBlockIdx
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		if b.HasLabel && b.Label == "join" {
			join = idx
		}
	}
	if join.IsZero() {
		t.Fatalf("join block not found")
	}
	if len(c.Preds(join)) != 2 {
		t.Errorf("want 2 preds of join, got %d", len(c.Preds(join)))
	}
}

func TestBuildUnknownLabel(t *testing.T) {
	fn := mustParseFunc(t, `
@main() {
  jmp .nowhere;
}
`)
	_, err := Build(fn, false)
	if err == nil || !strings.Contains(err.Error(), "unknown label") {
		t.Fatalf("want unknown label error, got %v", err)
	}
}

func TestBuildPruneUnreachable(t *testing.T) {
	fn := mustParseFunc(t, `
@main() {
  jmp .live;
.dead:
  x: int = const 1;
  print x;
.live:
  y: int = const 2;
  print y;
}
`)
	withDead, err := Build(fn, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if withDead.NumBlocks() != 3 {
		t.Fatalf("want 3 blocks unpruned, got %d", withDead.NumBlocks())
	}

	pruned, err := Build(fn, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pruned.NumBlocks() != 2 {
		t.Fatalf("want 2 blocks pruned, got %d", pruned.NumBlocks())
	}
	for _, idx := range pruned.Blocks() {
		if b := pruned.MustBlock(idx); b.HasLabel && b.Label == "dead" {
			t.Errorf("dead block survived pruning")
		}
	}
}

func TestBuildMalformedJmp(t *testing.T) {
	fn := &ir.Function{
		Signature: ir.FunctionSignature{Name: "bad"},
		Body: []ir.Item{
			ir.EffectInstr{Op: ir.OpJmp, Labels: []string{"a", "b"}},
		},
	}
	_, err := Build(fn, false)
	if err == nil || !strings.Contains(err.Error(), "malformed jmp") {
		t.Fatalf("want malformed jmp error, got %v", err)
	}
}

func TestBuildDuplicateLabel(t *testing.T) {
	fn := mustParseFunc(t, `
@main() {
.l:
  x: int = const 1;
  print x;
.l:
  print x;
}
`)
	_, err := Build(fn, false)
	if err == nil || !strings.Contains(err.Error(), "duplicate label") {
		t.Fatalf("want duplicate label error, got %v", err)
	}
}
