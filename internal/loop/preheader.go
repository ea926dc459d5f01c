package loop

import "github.com/ethanuppal/cs6120/internal/cfg"

// InsertPreheader implements §4.H "Preheader insertion": makes every
// fallthrough explicit, creates a fresh empty block, reorients every
// predecessor of the header (including back-edge sources) onto it, links
// it unconditionally to the header, then reorients the back-edge sources
// back to the header — leaving the loop's iteration structure unchanged
// but giving LICM a single safe landing block that dominates the header.
func InsertPreheader(c *cfg.FunctionCfg, l *Loop) cfg.BasicBlockIdx {
	c.MakeFallthroughsExplicit()

	pre := c.AddBlock("")

	preds := append([]cfg.BasicBlockIdx(nil), c.Preds(l.Header)...)
	for _, p := range preds {
		c.ReorientEdge(p, l.Header, pre)
	}
	c.SetUnconditionalEdge(pre, l.Header)

	for _, be := range l.BackEdges {
		c.ReorientEdge(be.Source, pre, l.Header)
	}

	return pre
}
