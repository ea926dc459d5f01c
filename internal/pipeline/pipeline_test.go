package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/ir"
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

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "cs6120.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	passes := cfg.Passes()
	if len(passes) != len(DefaultPassOrder) {
		t.Fatalf("want default pass order, got %v", passes)
	}
}

func TestLoadHonorsConfiguredPasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cs6120.toml")
	if err := os.WriteFile(path, []byte("[pipeline]\npasses = [\"lvn\", \"dce\"]\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	passes := cfg.Passes()
	if len(passes) != 2 || passes[0] != "lvn" || passes[1] != "dce" {
		t.Fatalf("want [lvn dce], got %v", passes)
	}
}

func TestRunLVNThenDCE(t *testing.T) {
	c := build(t, `
@main() {
  a: int = const 2;
  b: int = const 3;
  c: int = add a b;
  print c;
}
`)
	if _, err := Run(c, []string{"lvn", "dce"}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, idx := range c.Blocks() {
		for _, instr := range c.MustBlock(idx).Instructions {
			if v, ok := instr.(ir.ConstInstr); ok && v.Value.Kind == ir.LitInt && v.Value.I == 5 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("want folded constant 5 to survive DCE")
	}
}

func TestRunDominatorsPopulatesResult(t *testing.T) {
	c := build(t, `
@main(cond: bool) {
  br cond .l .r;
.l:
  jmp .join;
.r:
  jmp .join;
.join:
  ret;
}
`)
	res, err := Run(c, []string{"dom", "front"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Dominators == nil {
		t.Fatalf("want dominators computed")
	}
	if res.Frontiers == nil {
		t.Fatalf("want frontiers computed")
	}
}

func TestRunRejectsUnknownPass(t *testing.T) {
	c := build(t, `@main() { ret; }`)
	if _, err := Run(c, []string{"nonsense"}, nil); err == nil {
		t.Fatalf("want an error for an unknown pass")
	}
}
