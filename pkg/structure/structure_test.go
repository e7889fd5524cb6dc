package structure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/ssa"
)

func mustDominance(t *testing.T, c *cfg.Cfg) *ssa.Dominance {
	t.Helper()
	dom, warnings, err := ssa.ComputeDominance(c, 0)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return dom
}

// 0 branches to 1 (then: x=1) / 2 (else: x=2), both join at 3 (return x).
func ifElseCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Branch(ir.Ident("local_0"), 1, 2)},
		1: {ID: 1, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(1))}, Terminator: ir.Jump(3)},
		2: {ID: 2, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(2))}, Terminator: ir.Jump(3)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.Return(ir.Ident("local_1"))}, Terminator: ir.ReturnTerm(ir.Ident("local_1"))},
	}
	return cfg.Build(blocks, 0)
}

func TestRecoverIfElse(t *testing.T) {
	c := ifElseCFG()
	dom := mustDominance(t, c)
	stmts, warnings := Recover(c, dom)
	require.Empty(t, warnings)
	require.Len(t, stmts, 2) // the If, then the merge block's own Return statement

	require.Equal(t, ir.StmtIf, stmts[0].Kind)
	require.Len(t, stmts[0].Then, 1)
	require.Len(t, stmts[0].Else, 1)
	require.Equal(t, ir.StmtReturn, stmts[1].Kind)
}

// 0 -> 1 (header: branch on local_0<3) -true-> 2 (body: local_0 = local_0+1)
// -> 1 (back edge); 1 -false-> 3 (return).
func forLoopCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.IntLit(0))}, Terminator: ir.Fallthrough(1)},
		1: {ID: 1, Terminator: ir.Branch(ir.Binary("<", ir.Ident("local_0"), ir.IntLit(3)), 2, 3)},
		2: {ID: 2, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1)))}, Terminator: ir.Jump(1)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.Return(nil)}, Terminator: ir.ReturnTerm(nil)},
	}
	return cfg.Build(blocks, 0)
}

func TestRecoverCollapsesForLoop(t *testing.T) {
	c := forLoopCFG()
	dom := mustDominance(t, c)
	stmts, warnings := Recover(c, dom)
	require.Empty(t, warnings)

	require.Len(t, stmts, 2) // init-assign collapsed into the for, then the merge block's own Return
	require.Equal(t, ir.StmtFor, stmts[0].Kind)

	forStmt := stmts[0]
	require.NotNil(t, forStmt.Init)
	require.Equal(t, ir.StmtAssign, forStmt.Init.Kind)
	require.Equal(t, "local_0", forStmt.Init.Target.Ident)

	require.NotNil(t, forStmt.Step)
	require.Equal(t, ir.StmtCompoundAssign, forStmt.Step.Kind)
	require.Equal(t, "local_0", forStmt.Step.Target.Ident)
	require.Equal(t, "+", forStmt.Step.Op)

	require.Empty(t, forStmt.Body) // the step was extracted, leaving an empty loop body
	require.Equal(t, ir.StmtReturn, stmts[1].Kind)
}

// 0 -> 1 (header, no test of its own: local_0 = local_0+1) -> 2 (latch:
// branch on local_0<3, true loops back to 1, false exits to 3 (return)).
// The test sits at the tail, not the header: a do-while, not a while.
func doWhileCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Fallthrough(1)},
		1: {ID: 1, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1)))}, Terminator: ir.Fallthrough(2)},
		2: {ID: 2, Terminator: ir.Branch(ir.Binary("<", ir.Ident("local_0"), ir.IntLit(3)), 1, 3)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.Return(ir.Ident("local_0"))}, Terminator: ir.ReturnTerm(ir.Ident("local_0"))},
	}
	return cfg.Build(blocks, 0)
}

func TestRecoverRecognizesDoWhileLoop(t *testing.T) {
	c := doWhileCFG()
	dom := mustDominance(t, c)
	stmts, warnings := Recover(c, dom)
	require.Empty(t, warnings)

	require.Len(t, stmts, 2)
	require.Equal(t, ir.StmtDoWhile, stmts[0].Kind)
	require.Len(t, stmts[0].Then, 1)
	require.Equal(t, ir.StmtAssign, stmts[0].Then[0].Kind)
	require.Equal(t, ir.StmtReturn, stmts[1].Kind)
}

// 0 branches on local_0==1 (then: local_1=10) else branches on local_0==2
// (then: local_1=20, else: local_1=99); all three arms join at 5 (return).
// Two equality tests against the same subject in a row should collapse
// into one switch with a default arm.
func equalityChainCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Branch(ir.Binary("==", ir.Ident("local_0"), ir.IntLit(1)), 1, 2)},
		1: {ID: 1, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(10))}, Terminator: ir.Jump(5)},
		2: {ID: 2, Terminator: ir.Branch(ir.Binary("==", ir.Ident("local_0"), ir.IntLit(2)), 3, 4)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(20))}, Terminator: ir.Jump(5)},
		4: {ID: 4, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(99))}, Terminator: ir.Jump(5)},
		5: {ID: 5, Statements: []*ir.Stmt{ir.Return(ir.Ident("local_1"))}, Terminator: ir.ReturnTerm(ir.Ident("local_1"))},
	}
	return cfg.Build(blocks, 0)
}

func TestRecoverCollapsesEqualityChainIntoSwitch(t *testing.T) {
	c := equalityChainCFG()
	dom := mustDominance(t, c)
	stmts, warnings := Recover(c, dom)
	require.Empty(t, warnings)

	require.Len(t, stmts, 2)
	require.Equal(t, ir.StmtSwitch, stmts[0].Kind)
	require.Equal(t, "local_0", stmts[0].Subject.Ident)
	require.Len(t, stmts[0].Cases, 3)

	require.Equal(t, int64(1), stmts[0].Cases[0].Value.Int.Int64())
	require.Equal(t, int64(20), stmts[0].Cases[1].Body[0].Source.Int.Int64())
	require.Equal(t, int64(2), stmts[0].Cases[1].Value.Int.Int64())
	require.Nil(t, stmts[0].Cases[2].Value)
	require.Equal(t, int64(99), stmts[0].Cases[2].Body[0].Source.Int.Int64())

	require.Equal(t, ir.StmtReturn, stmts[1].Kind)
}

// A single if/else testing equality isn't a "chain" on its own: collapsing
// requires at least two arms, so a lone equality test must stay a plain if.
func TestRecoverLeavesSingleEqualityTestAsIf(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Branch(ir.Binary("==", ir.Ident("local_0"), ir.IntLit(1)), 1, 2)},
		1: {ID: 1, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(10))}, Terminator: ir.Jump(3)},
		2: {ID: 2, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_1"), ir.IntLit(20))}, Terminator: ir.Jump(3)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.Return(ir.Ident("local_1"))}, Terminator: ir.ReturnTerm(ir.Ident("local_1"))},
	}
	c := cfg.Build(blocks, 0)
	dom := mustDominance(t, c)
	stmts, warnings := Recover(c, dom)
	require.Empty(t, warnings)

	require.Len(t, stmts, 2)
	require.Equal(t, ir.StmtIf, stmts[0].Kind)
}

// A jump that targets an already-visited block (irreducible from this
// walker's perspective) must fall back to Label/Goto and record a warning
// instead of recursing forever.
func TestRecoverFallsBackOnAlreadyVisitedTarget(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Branch(ir.Ident("local_0"), 1, 2)},
		1: {ID: 1, Terminator: ir.Jump(2)},
		2: {ID: 2, Terminator: ir.Jump(1)}, // irreducible: 2 jumps back into 1's region
	}
	c := cfg.Build(blocks, 0)
	dom := mustDominance(t, c)
	_, warnings := Recover(c, dom)
	require.NotEmpty(t, warnings)
}
