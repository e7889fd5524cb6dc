package analysis

import "github.com/nspcc-dev/neo-decompiler/pkg/ir"

// walkStmts visits every statement in stmts and its nested bodies
// (If/While/For/Try/Switch arms), calling onStmt for each one and
// onExpr for every expression reachable from it. Either callback may be
// nil. Read-only: never mutates the tree, unlike ssa's renaming walkers.
func walkStmts(stmts []*ir.Stmt, onStmt func(*ir.Stmt), onExpr func(*ir.Expr)) {
	for _, s := range stmts {
		walkStmt(s, onStmt, onExpr)
	}
}

func walkStmt(s *ir.Stmt, onStmt func(*ir.Stmt), onExpr func(*ir.Expr)) {
	if s == nil {
		return
	}
	if onStmt != nil {
		onStmt(s)
	}
	// A plain identifier assignment target is a write, not a read: only
	// descend into it when it has sub-expressions to read (e.g. an
	// indexed target like arr[idx] = v, where idx is a read).
	isPlainIdentTarget := (s.Kind == ir.StmtAssign || s.Kind == ir.StmtCompoundAssign) &&
		s.Target != nil && s.Target.Kind == ir.ExprIdent
	if !isPlainIdentTarget {
		walkExpr(s.Target, onExpr)
	}
	walkExpr(s.Source, onExpr)
	walkExpr(s.Expr, onExpr)
	walkExpr(s.Cond, onExpr)
	walkExpr(s.Subject, onExpr)
	walkStmt(s.Init, onStmt, onExpr)
	walkStmt(s.Step, onStmt, onExpr)
	walkStmts(s.Then, onStmt, onExpr)
	walkStmts(s.Else, onStmt, onExpr)
	walkStmts(s.Body, onStmt, onExpr)
	walkStmts(s.TryBody, onStmt, onExpr)
	walkStmts(s.CatchBody, onStmt, onExpr)
	walkStmts(s.FinallyBody, onStmt, onExpr)
	for _, c := range s.Cases {
		walkExpr(c.Value, onExpr)
		walkStmts(c.Body, onStmt, onExpr)
	}
}

func walkExpr(e *ir.Expr, onExpr func(*ir.Expr)) {
	if e == nil {
		return
	}
	if onExpr != nil {
		onExpr(e)
	}
	walkExpr(e.Lhs, onExpr)
	walkExpr(e.Rhs, onExpr)
	walkExpr(e.CalleeExpr, onExpr)
	walkExpr(e.Target, onExpr)
	walkExpr(e.Index, onExpr)
	for _, a := range e.Args {
		walkExpr(a, onExpr)
	}
}
