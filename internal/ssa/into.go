package ssa

import (
	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dom"
	"github.com/ethanuppal/cs6120/internal/ir"
)

// IntoSSA converts c in place into strict get/set SSA form, §4.G "Into
// SSA": parameters are simulated as locals, phi (`get`) sites are computed
// via iterated dominance-frontier closure and inserted, every definition
// and use is renamed via a dominator-tree DFS that also places upsilon
// (`set`) writes at each predecessor, and any use with no dominating
// definition is resolved to an `undef` token materialized at entry. The
// result is validated as strict SSA before returning.
func IntoSSA(c *cfg.FunctionCfg) error {
	doms := dom.Compute(c)
	tree := dom.BuildTree(c, doms)
	fronts := dom.ComputeFrontiers(c, doms)

	insertParamCopies(c)
	varInfos := collectDefSites(c)
	_, byBlock := computePhiPoints(varInfos, fronts)
	insertPhis(c, byBlock, varInfos)

	r := &renamer{
		c:        c,
		tree:     tree,
		byBlock:  byBlock,
		varInfos: varInfos,
		stacks:   make(map[string][]string),
		undef:    make(map[string]ir.Type),
	}
	// Parameters enter under their own names, so the entry copies read the
	// incoming values.
	for _, p := range c.Signature.Arguments {
		r.stacks[p.Name] = []string{p.Name}
	}
	r.rename(c.Entry)
	insertUndefDefs(c, r.undef)

	return ValidateStrict(c)
}

// InsertPhisOnly runs only the phi-placement half of IntoSSA — parameter
// simulation and iterated dominance-frontier phi insertion — without the
// dominator-tree-DFS renaming pass. This is a diagnostic staging point
// (§6 ssa-tool `--skip-post-phi-insertion`): the result is not SSA (names
// are unrenamed and upsilons are absent), useful only for inspecting where
// phis land.
func InsertPhisOnly(c *cfg.FunctionCfg) error {
	doms := dom.Compute(c)
	fronts := dom.ComputeFrontiers(c, doms)

	insertParamCopies(c)
	varInfos := collectDefSites(c)
	_, byBlock := computePhiPoints(varInfos, fronts)
	insertPhis(c, byBlock, varInfos)
	return nil
}
