// Package ssa computes dominator trees and minimal SSA form over a lifted
// CFG (§4.7): the Cooper-Harvey-Kennedy iterative dominance algorithm,
// dominance frontiers, iterated-DF φ-placement, and dominator-tree-DFS
// variable renaming.
package ssa

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// DefaultIterationCap bounds the dominance fixpoint loop and the renaming
// walk so a pathological CFG degrades to a warning instead of hanging
// (§4.7, §5 resource bounds).
const DefaultIterationCap = 1_000_000

// ErrAnalysisLimitExceeded is returned by Build, together with an
// analysis_limit_exceeded warning and a nil Form, when the renaming walk
// exhausts DefaultIterationCap (or a caller-supplied cap). ComputeDominance
// does not return it: when its fixpoint loop exhausts the cap it appends
// the warning and returns the dominance computed so far.
type ErrAnalysisLimitExceeded struct {
	Stage string
}

func (e *ErrAnalysisLimitExceeded) Error() string {
	return "ssa: analysis limit exceeded during " + e.Stage
}

// Dominance holds the dominator tree and frontiers for one CFG.
type Dominance struct {
	IDom      map[ir.BlockID]ir.BlockID
	Children  map[ir.BlockID][]ir.BlockID
	Frontier  map[ir.BlockID][]ir.BlockID
	RPO       []ir.BlockID
	postIndex map[ir.BlockID]int
}

// ComputeDominance runs Cooper-Harvey-Kennedy over c's reachable blocks.
// Unreachable blocks (c.Reachable == false) are excluded; they have no
// dominator relationship to anything.
func ComputeDominance(c *cfg.Cfg, iterationCap int) (*Dominance, warning.List, error) {
	if iterationCap <= 0 {
		iterationCap = DefaultIterationCap
	}
	rpo := c.ReachablePostOrder()
	if len(rpo) == 0 {
		return &Dominance{IDom: map[ir.BlockID]ir.BlockID{}, Children: map[ir.BlockID][]ir.BlockID{}, Frontier: map[ir.BlockID][]ir.BlockID{}}, nil, nil
	}
	postIndex := make(map[ir.BlockID]int, len(rpo))
	for i, id := range rpo {
		postIndex[id] = i
	}
	entry := rpo[0]

	idom := make(map[ir.BlockID]ir.BlockID, len(rpo))
	idom[entry] = entry

	var warnings warning.List
	changed := true
	iterations := 0
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			iterations++
			if iterations > iterationCap {
				warnings = warnings.Append(warning.New(warning.AnalysisLimitExceeded, map[string]any{"stage": "dominance"}))
				return buildDominance(idom, rpo, postIndex, c), warnings, nil
			}
			var newIdom ir.BlockID
			found := false
			for _, e := range c.Predecessors(b) {
				p := e.From
				if _, ok := idom[p]; !ok {
					continue
				}
				if !found {
					newIdom, found = p, true
					continue
				}
				newIdom = intersect(idom, postIndex, newIdom, p)
			}
			if !found {
				continue
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	return buildDominance(idom, rpo, postIndex, c), warnings, nil
}

// intersect walks two candidate idoms up the (partial) dominator tree until
// they meet. postIndex ranks blocks by position in reverse postorder, so the
// entry sits at index 0 (the minimum) rather than the maximum a raw DFS
// postorder number would give it; climbing toward the entry therefore means
// moving to the LARGER index, the mirror image of the textbook comparison.
func intersect(idom map[ir.BlockID]ir.BlockID, postIndex map[ir.BlockID]int, a, b ir.BlockID) ir.BlockID {
	for a != b {
		for postIndex[a] > postIndex[b] {
			a = idom[a]
		}
		for postIndex[b] > postIndex[a] {
			b = idom[b]
		}
	}
	return a
}

func buildDominance(idom map[ir.BlockID]ir.BlockID, rpo []ir.BlockID, postIndex map[ir.BlockID]int, c *cfg.Cfg) *Dominance {
	d := &Dominance{
		IDom:      idom,
		Children:  make(map[ir.BlockID][]ir.BlockID),
		Frontier:  make(map[ir.BlockID][]ir.BlockID),
		RPO:       rpo,
		postIndex: postIndex,
	}
	entry := rpo[0]
	for _, b := range rpo {
		if b == entry {
			continue
		}
		d.Children[idom[b]] = append(d.Children[idom[b]], b)
	}
	for _, kids := range d.Children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}

	frontierSet := make(map[ir.BlockID]map[ir.BlockID]bool)
	for _, b := range rpo {
		preds := c.Predecessors(b)
		if len(preds) < 2 {
			continue
		}
		for _, e := range preds {
			runner := e.From
			if _, ok := idom[runner]; !ok {
				continue
			}
			for runner != idom[b] {
				if frontierSet[runner] == nil {
					frontierSet[runner] = make(map[ir.BlockID]bool)
				}
				frontierSet[runner][b] = true
				runner = idom[runner]
			}
		}
	}
	for b, set := range frontierSet {
		list := make([]ir.BlockID, 0, len(set))
		for f := range set {
			list = append(list, f)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		d.Frontier[b] = list
	}
	return d
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (d *Dominance) Dominates(a, b ir.BlockID) bool {
	cur := b
	for {
		if cur == a {
			return true
		}
		next, ok := d.IDom[cur]
		if !ok || next == cur {
			return cur == a
		}
		cur = next
	}
}

// IteratedFrontier returns the iterated dominance frontier of a set of
// definition blocks, the candidate set for φ-node placement (§4.7).
func (d *Dominance) IteratedFrontier(defs []ir.BlockID) []ir.BlockID {
	work := append([]ir.BlockID(nil), defs...)
	inSet := make(map[ir.BlockID]bool)
	result := make(map[ir.BlockID]bool)
	for _, b := range work {
		inSet[b] = true
	}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, f := range d.Frontier[b] {
			if !result[f] {
				result[f] = true
				if !inSet[f] {
					inSet[f] = true
					work = append(work, f)
				}
			}
		}
	}
	out := make([]ir.BlockID, 0, len(result))
	for b := range result {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
