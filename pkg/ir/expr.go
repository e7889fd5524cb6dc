// Package ir defines the intermediate representation produced by the
// stack lifter: expressions (value trees, never mutated once emitted),
// statements, basic blocks, and terminators (§3 data model). Expressions
// and statements are plain Go structs dispatched on a Kind tag, matching
// the single-dispatch-over-enum style the spec calls for in §9 ("Avoid
// inheritance hierarchies; prefer exhaustive matching").
package ir

import "math/big"

// ExprKind tags an Expression's variant.
type ExprKind int

// Expression kinds.
const (
	ExprLiteralInt ExprKind = iota
	ExprLiteralBytes
	ExprLiteralBool
	ExprLiteralNull
	ExprIdent
	ExprBinary
	ExprUnary
	ExprCall
	ExprIndex
	ExprCast
	ExprHasKey
)

// CallKind tags the callee shape of an ExprCall.
type CallKind int

// Call kinds.
const (
	CallSyscall CallKind = iota
	CallMethodToken
	CallDirect
	CallComputed
	CallNative
)

// Expr is a node in an expression tree. Exactly one *Literal/*Kind-specific
// field group is meaningful per Kind; this mirrors a tagged union without
// needing an interface-per-variant hierarchy.
type Expr struct {
	Kind ExprKind

	// ExprLiteralInt
	Int *big.Int
	// ExprLiteralBytes
	Bytes []byte
	// ExprLiteralBool
	Bool bool
	// ExprIdent
	Ident string
	// ExprBinary / ExprUnary
	Op       string
	Lhs, Rhs *Expr // Rhs nil for ExprUnary
	// ExprCall
	CallKind   CallKind
	Callee     string // syscall name, resolved method name, or "" for computed
	CalleeExpr *Expr  // only for CallComputed (CALLA target)
	Args       []*Expr
	// ExprIndex / ExprCast / ExprHasKey
	Target *Expr
	Index  *Expr // ExprIndex, ExprHasKey
	Type   string // ExprCast target type name
}

// IntLit builds a small integer literal.
func IntLit(v int64) *Expr { return &Expr{Kind: ExprLiteralInt, Int: big.NewInt(v)} }

// BigIntLit builds an arbitrary-precision integer literal.
func BigIntLit(v *big.Int) *Expr { return &Expr{Kind: ExprLiteralInt, Int: v} }

// BytesLit builds a byte-string literal.
func BytesLit(b []byte) *Expr { return &Expr{Kind: ExprLiteralBytes, Bytes: b} }

// BoolLit builds a boolean literal.
func BoolLit(v bool) *Expr { return &Expr{Kind: ExprLiteralBool, Bool: v} }

// NullLit builds the null literal.
func NullLit() *Expr { return &Expr{Kind: ExprLiteralNull} }

// Ident builds a slot/temporary identifier reference.
func Ident(name string) *Expr { return &Expr{Kind: ExprIdent, Ident: name} }

// Binary builds a binary-operator expression.
func Binary(op string, lhs, rhs *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Lhs: lhs, Rhs: rhs}
}

// Unary builds a unary-operator expression.
func Unary(op string, operand *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Op: op, Lhs: operand}
}

// Call builds a call expression.
func Call(kind CallKind, callee string, calleeExpr *Expr, args []*Expr) *Expr {
	return &Expr{Kind: ExprCall, CallKind: kind, Callee: callee, CalleeExpr: calleeExpr, Args: args}
}

// Index builds an a[b] expression.
func Index(target, index *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Target: target, Index: index}
}

// Cast builds a type-cast/predicate expression (CONVERT/ISTYPE/ISNULL).
func Cast(typ string, target *Expr) *Expr {
	return &Expr{Kind: ExprCast, Type: typ, Target: target}
}

// HasKey builds a has_key(a, b) expression (HASKEY).
func HasKey(target, index *Expr) *Expr {
	return &Expr{Kind: ExprHasKey, Target: target, Index: index}
}

// IsIdempotent reports whether re-evaluating this expression is safe to
// duplicate without a temporary binding (§4.4/§9: calls and stateful
// reads are never duplicable).
func (e *Expr) IsIdempotent() bool {
	if e == nil {
		return true
	}
	switch e.Kind {
	case ExprCall:
		return false
	case ExprBinary:
		return e.Lhs.IsIdempotent() && e.Rhs.IsIdempotent()
	case ExprUnary, ExprCast:
		return e.Target.IsIdempotent() && e.Lhs.IsIdempotent()
	case ExprIndex, ExprHasKey:
		// Indexing a collection is a pure read of the abstract model
		// here (no interpreter-level storage access folded in), but we
		// conservatively still forbid duplication since PICKITEM may
		// observe mutation performed by an intervening statement.
		return false
	default:
		return true
	}
}
