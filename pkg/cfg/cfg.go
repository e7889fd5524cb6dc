package cfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

// EdgeKind labels one CFG edge.
type EdgeKind int

// Edge kinds.
const (
	EdgeFallthrough EdgeKind = iota
	EdgeJump
	EdgeTrue
	EdgeFalse
	EdgeTry
	EdgeCatch
	EdgeFinally
	EdgeLeave
)

// Edge is one directed control-flow edge.
type Edge struct {
	From, To ir.BlockID
	Kind     EdgeKind
}

// Cfg is the control-flow graph over a lifted program's basic blocks.
type Cfg struct {
	Blocks map[ir.BlockID]*ir.BasicBlock
	Edges  []Edge
	Entry  ir.BlockID

	succ map[ir.BlockID][]Edge
	pred map[ir.BlockID][]Edge
}

// Build derives the edge set from each block's terminator, computes
// reachability by BFS from entry, and marks unreached blocks Dead (§4.5).
// Blocks is taken by reference and mutated in place (Dead flags only).
func Build(blocks map[ir.BlockID]*ir.BasicBlock, entry ir.BlockID) *Cfg {
	c := &Cfg{
		Blocks: blocks,
		Entry:  entry,
		succ:   make(map[ir.BlockID][]Edge),
		pred:   make(map[ir.BlockID][]Edge),
	}
	ids := make([]ir.BlockID, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		for _, e := range edgesFor(id, blocks[id].Terminator) {
			c.addEdge(e)
		}
	}
	c.markReachability()
	return c
}

func edgesFor(from ir.BlockID, t ir.Terminator) []Edge {
	switch t.Kind {
	case ir.TermFallthrough:
		return []Edge{{From: from, To: t.Target, Kind: EdgeFallthrough}}
	case ir.TermJump:
		return []Edge{{From: from, To: t.Target, Kind: EdgeJump}}
	case ir.TermBranch:
		return []Edge{
			{From: from, To: t.Then, Kind: EdgeTrue},
			{From: from, To: t.Else, Kind: EdgeFalse},
		}
	case ir.TermTryEnter:
		edges := []Edge{{From: from, To: t.Try, Kind: EdgeTry}}
		if t.HasCatch {
			edges = append(edges, Edge{From: from, To: t.Catch, Kind: EdgeCatch})
		}
		if t.HasFinally {
			edges = append(edges, Edge{From: from, To: t.Finally, Kind: EdgeFinally})
		}
		return edges
	case ir.TermLeave:
		return []Edge{{From: from, To: t.Target, Kind: EdgeLeave}}
	case ir.TermReturn, ir.TermAbort:
		return nil
	default:
		return nil
	}
}

func (c *Cfg) addEdge(e Edge) {
	c.Edges = append(c.Edges, e)
	c.succ[e.From] = append(c.succ[e.From], e)
	c.pred[e.To] = append(c.pred[e.To], e)
}

func (c *Cfg) markReachability() {
	for _, b := range c.Blocks {
		b.Dead = true
	}
	if _, ok := c.Blocks[c.Entry]; !ok {
		return
	}
	visited := map[ir.BlockID]bool{c.Entry: true}
	queue := []ir.BlockID{c.Entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if b, ok := c.Blocks[id]; ok {
			b.Dead = false
		}
		for _, e := range c.succ[id] {
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
}

// Successors returns the outgoing edges of id in a deterministic order.
func (c *Cfg) Successors(id ir.BlockID) []Edge {
	return append([]Edge(nil), c.succ[id]...)
}

// Predecessors returns the incoming edges of id in a deterministic order.
func (c *Cfg) Predecessors(id ir.BlockID) []Edge {
	return append([]Edge(nil), c.pred[id]...)
}

// SortedIDs returns every block id in ascending order.
func (c *Cfg) SortedIDs() []ir.BlockID {
	ids := make([]ir.BlockID, 0, len(c.Blocks))
	for id := range c.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReachablePostOrder returns block ids in reverse post-order from entry,
// visiting only reachable blocks — the traversal order SSA construction
// requires (§4.7/§5).
func (c *Cfg) ReachablePostOrder() []ir.BlockID {
	var post []ir.BlockID
	visited := map[ir.BlockID]bool{}
	var visit func(id ir.BlockID)
	visit = func(id ir.BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range c.succ[id] {
			visit(e.To)
		}
		post = append(post, id)
	}
	visit(c.Entry)
	rpo := make([]ir.BlockID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

// Reachable reports whether id was visited by BFS from entry.
func (c *Cfg) Reachable(id ir.BlockID) bool {
	b, ok := c.Blocks[id]
	return ok && !b.Dead
}

// DOT renders the graph in Graphviz DOT format, styling unreachable
// blocks distinctly (§4.5).
func (c *Cfg) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph cfg {\n")
	for _, id := range c.SortedIDs() {
		b := c.Blocks[id]
		style := ""
		if b.Dead {
			style = ` [style=dashed,color=gray]`
		}
		fmt.Fprintf(&sb, "  b%d [label=\"b%d: 0x%04x-0x%04x\"]%s;\n", id, id, b.StartOffset, b.EndOffset, style)
	}
	for _, e := range c.Edges {
		label := edgeLabel(e.Kind)
		fmt.Fprintf(&sb, "  b%d -> b%d [label=\"%s\"];\n", e.From, e.To, label)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func edgeLabel(k EdgeKind) string {
	switch k {
	case EdgeFallthrough:
		return "fallthrough"
	case EdgeJump:
		return "jump"
	case EdgeTrue:
		return "True"
	case EdgeFalse:
		return "False"
	case EdgeTry:
		return "try"
	case EdgeCatch:
		return "catch"
	case EdgeFinally:
		return "finally"
	case EdgeLeave:
		return "leave"
	default:
		return ""
	}
}
