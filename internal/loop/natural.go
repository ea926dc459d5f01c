// Package loop implements natural-loop detection, preheader insertion, and
// loop-invariant code motion, §4.H.
package loop

import (
	"github.com/ethanuppal/cs6120/internal/cfg"
	"github.com/ethanuppal/cs6120/internal/dataflow"
	"github.com/ethanuppal/cs6120/internal/dom"
)

// BackEdge is an edge (Source, Header) where Header dominates Source.
type BackEdge struct {
	Source cfg.BasicBlockIdx
	Header cfg.BasicBlockIdx
}

// Loop is a natural loop, §4.H: the set of blocks closed under predecessors
// from every back-edge source up to (and including) the header, with
// multiple back edges to the same header merged into one loop.
type Loop struct {
	Header    cfg.BasicBlockIdx
	BackEdges []BackEdge
	Body      dataflow.Set[cfg.BasicBlockIdx]
}

// FindBackEdges returns every edge (t, h) in c such that h ∈ dom[t].
func FindBackEdges(c *cfg.FunctionCfg, doms dom.Sets) []BackEdge {
	var out []BackEdge
	for _, t := range c.Blocks() {
		for _, h := range c.Succs(t) {
			if doms.Dominates(h, t) {
				out = append(out, BackEdge{Source: t, Header: h})
			}
		}
	}
	return out
}

// naturalLoopBody computes the smallest block set containing h and t,
// closed under predecessors, stopping at h (§4.H "Natural loop").
func naturalLoopBody(c *cfg.FunctionCfg, h, t cfg.BasicBlockIdx) dataflow.Set[cfg.BasicBlockIdx] {
	body := dataflow.NewSet(h, t)
	worklist := []cfg.BasicBlockIdx{t}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if n == h {
			continue
		}
		for _, p := range c.Preds(n) {
			if _, in := body[p]; !in {
				body[p] = struct{}{}
				worklist = append(worklist, p)
			}
		}
	}
	return body
}

// DetectLoops groups every back edge by header into one Loop each, merging
// bodies for the "multiple back edges to the same header" boundary case.
func DetectLoops(c *cfg.FunctionCfg, doms dom.Sets) []*Loop {
	byHeader := make(map[cfg.BasicBlockIdx]*Loop)
	var order []cfg.BasicBlockIdx

	for _, be := range FindBackEdges(c, doms) {
		l, ok := byHeader[be.Header]
		if !ok {
			l = &Loop{Header: be.Header, Body: dataflow.NewSet[cfg.BasicBlockIdx]()}
			byHeader[be.Header] = l
			order = append(order, be.Header)
		}
		l.BackEdges = append(l.BackEdges, be)
		for b := range naturalLoopBody(c, be.Header, be.Source) {
			l.Body[b] = struct{}{}
		}
	}

	out := make([]*Loop, len(order))
	for i, h := range order {
		out[i] = byHeader[h]
	}
	return out
}

// SortedBody returns the loop's blocks in c's deterministic block order.
func (l *Loop) SortedBody(c *cfg.FunctionCfg) []cfg.BasicBlockIdx {
	var out []cfg.BasicBlockIdx
	for _, idx := range c.Blocks() {
		if _, in := l.Body[idx]; in {
			out = append(out, idx)
		}
	}
	return out
}

// Exits returns every block outside the loop that is a successor of a
// block inside it.
func (l *Loop) Exits(c *cfg.FunctionCfg) dataflow.Set[cfg.BasicBlockIdx] {
	exits := dataflow.NewSet[cfg.BasicBlockIdx]()
	for b := range l.Body {
		for _, s := range c.Succs(b) {
			if _, in := l.Body[s]; !in {
				exits[s] = struct{}{}
			}
		}
	}
	return exits
}
