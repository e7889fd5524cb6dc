package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

func TestBuildDiamondInsertsTwoOperandPhi(t *testing.T) {
	c := diamondCFG()
	form, warnings, err := Build(c, 0)
	require.NoError(t, err)
	require.Empty(t, warnings)

	join := form.Blocks[3]
	require.NotEmpty(t, join.Statements)

	phiStmt := join.Statements[0]
	name, isPhi := IsPhi(phiStmt)
	require.True(t, isPhi)
	require.Contains(t, name, "local_0")

	// |operands(phi)| must equal |predecessors(join)|.
	preds := c.Predecessors(3)
	require.Len(t, phiStmt.Source.Args, len(preds))
	for _, arg := range phiStmt.Source.Args {
		require.Equal(t, ir.ExprIdent, arg.Kind)
		require.NotEmpty(t, arg.Ident)
	}
}

func TestBuildLoopBackEdgePhi(t *testing.T) {
	c := loopCFG()
	form, _, err := Build(c, 0)
	require.NoError(t, err)

	header := form.Blocks[1]
	require.NotEmpty(t, header.Statements)
	_, isPhi := IsPhi(header.Statements[0])
	require.True(t, isPhi, "loop header must receive a phi for the loop-carried variable")

	preds := c.Predecessors(1)
	require.Len(t, header.Statements[0].Source.Args, len(preds))
}

func TestBuildEmptyCFGIsNoop(t *testing.T) {
	c := diamondCFG()
	// Build on a CFG whose entry block is unreachable from itself is not a
	// realistic case; instead verify zero warnings/err on the common path
	// and that renaming is idempotent in shape (blocks cloned, not shared).
	form, _, err := Build(c, 0)
	require.NoError(t, err)
	require.NotSame(t, c.Blocks[0], form.Blocks[0])
}
