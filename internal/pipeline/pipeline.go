package pipeline

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dce"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/loop"
	"github.com/ethanuppal/cs6120/internal/lvn"
	"github.com/ethanuppal/cs6120/internal/ssa"
)

// Result accumulates the read-only analyses a pipeline run produced,
// alongside the transformed c itself, which every IR-mutating pass (lvn,
// dce, into-ssa, from-ssa, licm) updates in place.
type Result struct {
	Reaching   map[cfg.BasicBlockIdx]dataflow.Set[dataflow.Definition]
	Live       map[cfg.BasicBlockIdx]dataflow.Set[string]
	Dominators dom.Sets
	Tree       *dom.Tree
	Frontiers  dom.Frontiers
	Loops      []*loop.Loop
}

// Run applies each named pass to c in sequence, in the teacher's own
// request/response shape: the mutating passes rewrite c's blocks directly,
// the analysis passes populate Result, and — when log is non-nil — each
// pass logs its own name, block count, and elapsed time.
func Run(c *cfg.FunctionCfg, passes []string, log *zap.SugaredLogger) (*Result, error) {
	res := &Result{}

	for _, name := range passes {
		start := time.Now()
		if err := runPass(c, name, res); err != nil {
			return nil, errors.Wrapf(err, "pass %q", name)
		}
		if log != nil {
			log.Infow("pass complete", "pass", name, "blocks", c.NumBlocks(), "elapsed", time.Since(start))
		}
	}
	return res, nil
}

func runPass(c *cfg.FunctionCfg, name string, res *Result) error {
	switch name {
	case "lvn":
		for _, idx := range c.Blocks() {
			b := c.MustBlock(idx)
			b.Instructions = lvn.Run(b.Instructions)
		}
		return nil

	case "dce":
		linear := cfg.Linearize(c)
		linear.Body = dce.RunFunction(linear.Body)
		rebuilt, err := cfg.Build(linear, false)
		if err != nil {
			return errors.Wrap(err, "rebuilding cfg after dce")
		}
		*c = *rebuilt
		return nil

	case "reaching":
		res.Reaching = dataflow.ReachingDefinitions(c)
		return nil

	case "live":
		res.Live = dataflow.LiveVariables(c)
		return nil

	case "dom":
		res.Dominators = dom.Compute(c)
		return nil

	case "tree":
		if res.Dominators == nil {
			res.Dominators = dom.Compute(c)
		}
		res.Tree = dom.BuildTree(c, res.Dominators)
		return nil

	case "front":
		if res.Dominators == nil {
			res.Dominators = dom.Compute(c)
		}
		res.Frontiers = dom.ComputeFrontiers(c, res.Dominators)
		return nil

	case "into-ssa":
		return ssa.IntoSSA(c)

	case "from-ssa":
		return ssa.OutOfSSA(c)

	case "loop-detect":
		if res.Dominators == nil {
			res.Dominators = dom.Compute(c)
		}
		res.Loops = loop.DetectLoops(c, res.Dominators)
		return nil

	case "licm":
		if res.Dominators == nil {
			res.Dominators = dom.Compute(c)
		}
		if res.Loops == nil {
			res.Loops = loop.DetectLoops(c, res.Dominators)
		}
		for _, l := range res.Loops {
			pre := loop.InsertPreheader(c, l)
			loop.RunLICM(c, l, pre)
		}
		return nil

	default:
		return errors.Errorf("unknown pass %q", name)
	}
}
