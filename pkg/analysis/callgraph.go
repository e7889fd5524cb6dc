// Package analysis builds the lightweight cross-block views layered on
// top of a lifted program: a call graph, slot cross-references, and
// shallow type-hint inference (§4.8). None of it feeds back into the IR;
// it's read-only annotation for rendering and inspection.
package analysis

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
)

// EntryNode names the synthetic caller attributed to bytecode outside any
// declared ABI method range.
const EntryNode = "script_entry"

// UnknownNode is the sink for computed calls (CALLA) whose target can't be
// resolved statically (§9 open question: call graph precision).
const UnknownNode = "unknown"

// CallEdge is one call-site edge: caller -> callee, anchored at the start
// offset of the basic block that contains the call.
type CallEdge struct {
	From, To string
	Offset   uint32
}

// CallGraph is the set of distinct nodes (script_entry, resolved callees,
// and the unknown sink) and the edges between them.
type CallGraph struct {
	Nodes []string
	Edges []CallEdge
}

// BuildCallGraph walks every reachable block's statements (terminators are
// not visited), recording one edge per call expression. m is optional; when present,
// edges are attributed to the ABI method whose offset range contains the
// call site rather than to script_entry.
func BuildCallGraph(blocks map[ir.BlockID]*ir.BasicBlock, m *manifest.ContractManifest) *CallGraph {
	seen := map[string]bool{EntryNode: true}
	cg := &CallGraph{Nodes: []string{EntryNode}}
	addNode := func(n string) {
		if !seen[n] {
			seen[n] = true
			cg.Nodes = append(cg.Nodes, n)
		}
	}

	ids := make([]ir.BlockID, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var edges []CallEdge
	for _, id := range ids {
		b := blocks[id]
		if b.Dead {
			continue
		}
		caller := callerAt(m, b.StartOffset)
		addNode(caller)
		walkStmts(b.Statements, nil, func(e *ir.Expr) {
			if e.Kind != ir.ExprCall {
				return
			}
			to := calleeLabel(e)
			addNode(to)
			edges = append(edges, CallEdge{From: caller, To: to, Offset: b.StartOffset})
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].Offset != edges[j].Offset {
			return edges[i].Offset < edges[j].Offset
		}
		return edges[i].To < edges[j].To
	})
	cg.Edges = edges
	return cg
}

func calleeLabel(e *ir.Expr) string {
	if e.CallKind == ir.CallComputed {
		return UnknownNode
	}
	if e.Callee == "" {
		return UnknownNode
	}
	return e.Callee
}

// callerAt finds the ABI method claiming offset, the greatest declared
// offset not exceeding it, falling back to script_entry when m is nil or
// offset precedes every declared method.
func callerAt(m *manifest.ContractManifest, offset uint32) string {
	if m == nil {
		return EntryNode
	}
	best := ""
	bestOffset := int64(-1)
	for _, meth := range m.ABI.Methods {
		if int64(meth.Offset) <= int64(offset) && int64(meth.Offset) > bestOffset {
			best = meth.Name
			bestOffset = int64(meth.Offset)
		}
	}
	if best == "" {
		return EntryNode
	}
	return best
}
