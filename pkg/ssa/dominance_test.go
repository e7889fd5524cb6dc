package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

// diamondCFG builds: 0 -branch-> {1, 2}, 1 -> 3, 2 -> 3, 3 -return.
func diamondCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Branch(ir.Ident("cond"), 1, 2)},
		1: {ID: 1, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.IntLit(1))}, Terminator: ir.Jump(3)},
		2: {ID: 2, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.IntLit(2))}, Terminator: ir.Jump(3)},
		3: {ID: 3, Statements: []*ir.Stmt{ir.ExprStatement(ir.Ident("local_0"))}, Terminator: ir.ReturnTerm(nil)},
	}
	return cfg.Build(blocks, 0)
}

// loopCFG builds: 0 -> 1 (header, branch), 1 -true-> 2 (body) -> 1 (back
// edge), 1 -false-> 3 (exit, return).
func loopCFG() *cfg.Cfg {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {ID: 0, Terminator: ir.Fallthrough(1)},
		1: {ID: 1, Terminator: ir.Branch(ir.Binary("<", ir.Ident("local_0"), ir.IntLit(3)), 2, 3)},
		2: {ID: 2, Statements: []*ir.Stmt{ir.Assign(ir.Ident("local_0"), ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1)))}, Terminator: ir.Jump(1)},
		3: {ID: 3, Terminator: ir.ReturnTerm(nil)},
	}
	return cfg.Build(blocks, 0)
}

func TestComputeDominanceDiamond(t *testing.T) {
	c := diamondCFG()
	dom, warnings, err := ComputeDominance(c, 0)
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.True(t, dom.Dominates(0, 3))
	require.True(t, dom.Dominates(0, 0))
	require.False(t, dom.Dominates(1, 3))
	require.False(t, dom.Dominates(2, 3))
	require.Equal(t, ir.BlockID(0), dom.IDom[3])

	frontier := dom.Frontier[1]
	require.Equal(t, []ir.BlockID{3}, frontier)
}

func TestComputeDominanceLoop(t *testing.T) {
	c := loopCFG()
	dom, _, err := ComputeDominance(c, 0)
	require.NoError(t, err)

	require.True(t, dom.Dominates(1, 2))
	require.True(t, dom.Dominates(0, 1))
	require.False(t, dom.Dominates(2, 1)) // back edge source never dominates the header
}

func TestDominatesSelfLoopSentinelTerminates(t *testing.T) {
	c := loopCFG()
	dom, _, err := ComputeDominance(c, 0)
	require.NoError(t, err)
	// Querying an id the entry does not dominate must still terminate
	// rather than loop forever on the idom[entry]=entry sentinel.
	require.False(t, dom.Dominates(99, 0))
}
