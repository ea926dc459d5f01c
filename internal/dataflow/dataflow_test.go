package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanuppal/cs6120/internal/cfg"
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

func TestReachingDefinitionsStraightLine(t *testing.T) {
	c := mustBuild(t, `
@main() {
  a: int = const 1;
  b: int = const 2;
  a: int = const 3;
  print a;
  print b;
}
`)
	sol := ReachingDefinitions(c)
	out := sol[c.Entry]

	names := map[string]int{}
	for d := range out {
		names[d.Name]++
	}
	assert.Equal(t, 1, names["a"], "want exactly 1 reaching def of a (the second)")
	assert.Equal(t, 1, names["b"], "want exactly 1 reaching def of b")
}

func TestReachingDefinitionsAcrossBranch(t *testing.T) {
	c := mustBuild(t, `
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
	sol := ReachingDefinitions(c)
	var join cfg.BasicBlockIdx
	for _, idx := range c.Blocks() {
		if b := c.MustBlock(idx); b.HasLabel && b.Label == "join" {
			join = idx
		}
	}
	in := sol[join]
	count := 0
	for d := range in {
		if d.Name == "x" {
			count++
		}
	}
	require.Equal(t, 2, count, "want both branch's defs of x to reach join")
}

func TestLiveVariablesDeadStoreNotLive(t *testing.T) {
	c := mustBuild(t, `
@main() {
  a: int = const 1;
  b: int = const 2;
  print a;
}
`)
	sol := LiveVariables(c)
	live := sol[c.Entry]
	_, ok := live["b"]
	require.False(t, ok, "want b not live (never used), got live set %v", SortedStrings(live))
}

func TestLiveVariablesAcrossBranch(t *testing.T) {
	c := mustBuild(t, `
@main(cond: bool) {
  x: int = const 1;
  br cond .then .else;
.then:
  print x;
  jmp .join;
.else:
  jmp .join;
.join:
  ret;
}
`)
	sol := LiveVariables(c)
	var then, els cfg.BasicBlockIdx
	for _, idx := range c.Blocks() {
		b := c.MustBlock(idx)
		switch {
		case b.HasLabel && b.Label == "then":
			then = idx
		case b.HasLabel && b.Label == "else":
			els = idx
		}
	}
	_, thenOK := sol[then]["x"]
	require.True(t, thenOK, "want x live-in to .then (used there), got %v", SortedStrings(sol[then]))
	_, elsOK := sol[els]["x"]
	require.False(t, elsOK, "want x not live-in to .else (never used there), got %v", SortedStrings(sol[els]))
}
