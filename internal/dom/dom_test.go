package dom

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// idxStrings renders a block set as its sorted handle strings, so cmp.Diff
// can compare sets without reaching into BasicBlockIdx's unexported field.
func idxStrings(s dataflow.Set[cfg.BasicBlockIdx]) []string {
	out := make([]string, 0, len(s))
	for idx := range s {
		out = append(out, idx.String())
	}
	sort.Strings(out)
	return out
}

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

// Diamond CFG entry -> {L, R} -> join, §8's scenario 4: dom[join] =
// {entry, join}, df(L) = df(R) = {join}.
func TestDiamondDominators(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  br cond .l .r;
.l:
  a: int = const 1;
  jmp .join;
.r:
  a: int = const 2;
  jmp .join;
.join:
  print a;
}
`)
	doms := Compute(c)
	join := findLabel(t, c, "join")
	l := findLabel(t, c, "l")
	r := findLabel(t, c, "r")

	want := idxStrings(dataflow.NewSet(c.Entry, join))
	if diff := cmp.Diff(want, idxStrings(doms[join])); diff != "" {
		t.Fatalf("dom[join] mismatch (-want +got):\n%s", diff)
	}
	if doms.Dominates(l, join) || doms.Dominates(r, join) {
		t.Fatalf("neither l nor r should dominate join in a diamond")
	}

	fronts := ComputeFrontiers(c, doms)
	if diff := cmp.Diff(idxStrings(dataflow.NewSet(join)), idxStrings(fronts[l])); diff != "" {
		t.Errorf("df(l) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(idxStrings(dataflow.NewSet(join)), idxStrings(fronts[r])); diff != "" {
		t.Errorf("df(r) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, idxStrings(fronts[c.Entry])); diff != "" {
		t.Errorf("df(entry) mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryBlockDominatesItself(t *testing.T) {
	c := mustBuild(t, `
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
	doms := Compute(c)
	for _, idx := range c.Blocks() {
		if !doms.Dominates(idx, idx) {
			t.Errorf("block %v does not dominate itself", idx)
		}
	}
}

func TestImmediateDominatorTree(t *testing.T) {
	c := mustBuild(t, `
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
	doms := Compute(c)
	tree := BuildTree(c, doms)

	l := findLabel(t, c, "l")
	r := findLabel(t, c, "r")
	join := findLabel(t, c, "join")

	if tree.Parent[l] != c.Entry || tree.Parent[r] != c.Entry {
		t.Fatalf("want l and r's idom to be entry, got %v / %v", tree.Parent[l], tree.Parent[r])
	}
	if tree.Parent[join] != c.Entry {
		t.Fatalf("want join's idom to be entry (neither l nor r dominates it alone), got %v", tree.Parent[join])
	}
}

func TestLoopHeaderDominatesBody(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  jmp .header;
.header:
  br cond .body .exit;
.body:
  jmp .header;
.exit:
  ret;
}
`)
	doms := Compute(c)
	header := findLabel(t, c, "header")
	body := findLabel(t, c, "body")
	if !doms.StrictlyDominates(header, body) {
		t.Fatalf("want loop header to strictly dominate its body")
	}
}
