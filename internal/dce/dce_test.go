package dce

import (
	"testing"

	"github.com/ethanuppal/cs6120/internal/ir"
)

func TestGlobalSweepDropsUnusedDest(t *testing.T) {
	body := []ir.Item{
		ir.ConstInstr{Dest: "a", Type: ir.Int, Value: ir.NewInt(1)},
		ir.ConstInstr{Dest: "unused", Type: ir.Int, Value: ir.NewInt(2)},
		ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}},
	}
	out := RunFunction(body)
	if len(out) != 2 {
		t.Fatalf("want 2 surviving items, got %d: %#v", len(out), out)
	}
	if c, ok := out[0].(ir.ConstInstr); !ok || c.Dest != "a" {
		t.Fatalf("want a to survive, got %#v", out[0])
	}
}

func TestLocalSweepKillsBeforeUse(t *testing.T) {
	body := []ir.Item{
		ir.ConstInstr{Dest: "x", Type: ir.Int, Value: ir.NewInt(1)},
		ir.ConstInstr{Dest: "x", Type: ir.Int, Value: ir.NewInt(2)}, // overwrites before any use
		ir.EffectInstr{Op: ir.OpPrint, Args: []string{"x"}},
	}
	out := RunFunction(body)
	if len(out) != 2 {
		t.Fatalf("want first def of x eliminated, got %d items: %#v", len(out), out)
	}
	c := out[0].(ir.ConstInstr)
	if c.Value.I != 2 {
		t.Fatalf("want surviving def to be the second one (value 2), got %v", c.Value.I)
	}
}

func TestIteratesToFixpoint(t *testing.T) {
	// a is dead only once b (which uses a) is itself found dead.
	body := []ir.Item{
		ir.ConstInstr{Dest: "a", Type: ir.Int, Value: ir.NewInt(1)},
		ir.ValueInstr{Dest: "b", Type: ir.Int, Op: ir.OpID, Args: []string{"a"}},
	}
	out := RunFunction(body)
	if len(out) != 0 {
		t.Fatalf("want both instructions eliminated after fixpoint, got %#v", out)
	}
}

func TestLocalSweepRespectsLabelBoundaries(t *testing.T) {
	body := []ir.Item{
		ir.ConstInstr{Dest: "x", Type: ir.Int, Value: ir.NewInt(1)},
		ir.LabelMarker{Name: "next"},
		ir.ConstInstr{Dest: "x", Type: ir.Int, Value: ir.NewInt(2)},
		ir.EffectInstr{Op: ir.OpPrint, Args: []string{"x"}},
	}
	out := RunFunction(body)
	// The local sweep must not treat the first def of x as killed by the
	// second: they're in different blocks, separated by a label, so the
	// first def isn't dead-before-use within its own block. Since the name
	// x is used (by the print) the global sweep keeps both defs too.
	if len(out) != 4 {
		t.Fatalf("want all 4 items to survive unchanged, got %d: %#v", len(out), out)
	}
}
