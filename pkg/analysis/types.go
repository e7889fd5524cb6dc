package analysis

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

// Hint is a best-effort stack-item type guess for a slot/temporary, never
// claimed to be sound — just the dominant usage pattern observed (§4.8).
type Hint string

// Hint values, named after the Neo VM stack item types they approximate.
const (
	HintUnknown    Hint = "Unknown"
	HintInteger    Hint = "Integer"
	HintBoolean    Hint = "Boolean"
	HintByteString Hint = "ByteString"
	HintArray      Hint = "Array"
	HintMap        Hint = "Map"
)

// InferTypes produces a shallow, per-identifier type hint from how each
// name is used: cast/predicate targets, arithmetic operands, and
// collection operations each vote for a Hint, and the most frequent vote
// wins. Ties favor HintUnknown's competitors in the fixed priority order
// below, rather than a map-iteration-order tiebreak, to keep the result
// deterministic.
func InferTypes(blocks map[ir.BlockID]*ir.BasicBlock) map[string]Hint {
	votes := make(map[string]map[Hint]int)
	vote := func(name string, h Hint) {
		if name == "" || h == HintUnknown {
			return
		}
		if votes[name] == nil {
			votes[name] = make(map[Hint]int)
		}
		votes[name][h]++
	}

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
		walkStmts(b.Statements, nil, func(e *ir.Expr) {
			switch e.Kind {
			case ir.ExprCast:
				vote(identName(e.Target), castHint(e.Type))
			case ir.ExprBinary:
				h := binaryHint(e.Op)
				vote(identName(e.Lhs), h)
				vote(identName(e.Rhs), h)
			case ir.ExprHasKey:
				vote(identName(e.Target), HintMap)
			case ir.ExprIndex:
				vote(identName(e.Target), HintArray)
			case ir.ExprCall:
				voteCallArgs(e, vote)
			}
		})
	}

	priority := []Hint{HintInteger, HintBoolean, HintByteString, HintArray, HintMap}
	out := make(map[string]Hint, len(votes))
	for name, counts := range votes {
		best := HintUnknown
		bestCount := 0
		for _, h := range priority {
			if counts[h] > bestCount {
				best, bestCount = h, counts[h]
			}
		}
		if best != HintUnknown {
			out[name] = best
		}
	}
	return out
}

func identName(e *ir.Expr) string {
	if e != nil && e.Kind == ir.ExprIdent {
		return e.Ident
	}
	return ""
}

func castHint(typ string) Hint {
	switch typ {
	case "Integer":
		return HintInteger
	case "Boolean":
		return HintBoolean
	case "ByteString", "Buffer":
		return HintByteString
	case "Array", "Struct":
		return HintArray
	case "Map":
		return HintMap
	default:
		return HintUnknown
	}
}

func binaryHint(op string) Hint {
	switch op {
	case "+", "-", "*", "/", "%", "<<", ">>", "<", "<=", ">", ">=":
		return HintInteger
	case "&&", "||":
		return HintBoolean
	default:
		return HintUnknown
	}
}

// voteCallArgs attributes a collection hint to the receiver of array/map
// builtins rendered as calls (SIZE, KEYS, VALUES, APPEND, SETITEM, ...).
func voteCallArgs(e *ir.Expr, vote func(string, Hint)) {
	if e.CallKind != ir.CallDirect || len(e.Args) == 0 {
		return
	}
	switch e.Callee {
	case "len", "keys", "values", "append", "remove", "reverse_items", "pop_item", "clear_items":
		vote(identName(e.Args[0]), HintArray)
	}
}
