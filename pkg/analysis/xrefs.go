package analysis

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

// AccessKind distinguishes a read from a write in a SlotXref.
type AccessKind int

// Access kinds.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

// Access is one read or write of a named slot/temporary, recorded at the
// start offset of the basic block it occurs in.
type Access struct {
	Kind   AccessKind
	Offset uint32
}

// Xrefs maps every identifier name (arg_N/local_N/static_N/tN/recovered_N)
// to its ordered list of accesses across the program, oldest offset first.
type Xrefs map[string][]Access

// BuildXrefs walks every reachable block and records one Access per
// identifier read or write (§4.8: slot cross-references).
func BuildXrefs(blocks map[ir.BlockID]*ir.BasicBlock) Xrefs {
	x := make(Xrefs)
	ids := make([]ir.BlockID, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b := blocks[id]
		if b.Dead {
			continue
		}
		offset := b.StartOffset
		walkStmts(b.Statements, func(s *ir.Stmt) {
			if (s.Kind == ir.StmtAssign || s.Kind == ir.StmtCompoundAssign) && s.Target != nil && s.Target.Kind == ir.ExprIdent {
				if s.Kind == ir.StmtCompoundAssign {
					x[s.Target.Ident] = append(x[s.Target.Ident], Access{Kind: AccessRead, Offset: offset})
				}
				x[s.Target.Ident] = append(x[s.Target.Ident], Access{Kind: AccessWrite, Offset: offset})
			}
		}, func(e *ir.Expr) {
			if e.Kind != ir.ExprIdent {
				return
			}
			x[e.Ident] = append(x[e.Ident], Access{Kind: AccessRead, Offset: offset})
		})
	}
	return x
}

// Reads returns the offsets where name is read, in program order.
func (x Xrefs) Reads(name string) []uint32 {
	return filterOffsets(x[name], AccessRead)
}

// Writes returns the offsets where name is written, in program order.
func (x Xrefs) Writes(name string) []uint32 {
	return filterOffsets(x[name], AccessWrite)
}

func filterOffsets(accesses []Access, kind AccessKind) []uint32 {
	var out []uint32
	for _, a := range accesses {
		if a.Kind == kind {
			out = append(out, a.Offset)
		}
	}
	return out
}

// Names returns every tracked identifier, sorted for deterministic output.
func (x Xrefs) Names() []string {
	names := make([]string, 0, len(x))
	for n := range x {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
