package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
)

func twoMethodBlocks() map[ir.BlockID]*ir.BasicBlock {
	return map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0, StartOffset: 0, EndOffset: 10,
			Statements: []*ir.Stmt{
				ir.ExprStatement(ir.Call(ir.CallDirect, "helper", nil, nil)),
			},
			Terminator: ir.ReturnTerm(nil),
		},
		1: {
			ID: 1, StartOffset: 20, EndOffset: 30,
			Statements: []*ir.Stmt{
				ir.ExprStatement(ir.Call(ir.CallComputed, "", ir.Ident("local_0"), nil)),
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
}

func TestBuildCallGraphAttributesToABIMethodOrEntry(t *testing.T) {
	blocks := twoMethodBlocks()
	m := &manifest.ContractManifest{}
	m.ABI.Methods = []manifest.Method{{Name: "main", Offset: 20}}

	cg := BuildCallGraph(blocks, m)
	require.Contains(t, cg.Nodes, EntryNode)
	require.Contains(t, cg.Nodes, "main")
	require.Contains(t, cg.Nodes, "helper")
	require.Contains(t, cg.Nodes, UnknownNode)

	var fromEntry, fromMain bool
	for _, e := range cg.Edges {
		if e.From == EntryNode && e.To == "helper" {
			fromEntry = true
		}
		if e.From == "main" && e.To == UnknownNode {
			fromMain = true
		}
	}
	require.True(t, fromEntry, "block 0 precedes every declared method, so it attributes to script_entry")
	require.True(t, fromMain, "a CALLA with no resolvable target attributes to the unknown sink")
}

func TestBuildCallGraphNilManifestUsesEntryForEverything(t *testing.T) {
	blocks := twoMethodBlocks()
	cg := BuildCallGraph(blocks, nil)
	for _, e := range cg.Edges {
		require.Equal(t, EntryNode, e.From)
	}
}

func TestBuildXrefsCompoundAssignIsReadAndWrite(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0, StartOffset: 5,
			Statements: []*ir.Stmt{
				ir.CompoundAssign(ir.Ident("local_0"), "+", ir.IntLit(1)),
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
	x := BuildXrefs(blocks)
	require.Equal(t, []uint32{5}, x.Reads("local_0"))
	require.Equal(t, []uint32{5}, x.Writes("local_0"))
}

func TestBuildXrefsPlainAssignTargetIsWriteOnly(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0, StartOffset: 1,
			Statements: []*ir.Stmt{
				ir.Assign(ir.Ident("local_0"), ir.IntLit(1)),
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
	x := BuildXrefs(blocks)
	require.Empty(t, x.Reads("local_0"))
	require.Equal(t, []uint32{1}, x.Writes("local_0"))
}

func TestBuildXrefsIndexedAssignTargetReadsTheIndex(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0, StartOffset: 2,
			Statements: []*ir.Stmt{
				ir.Assign(ir.Index(ir.Ident("local_0"), ir.Ident("local_1")), ir.IntLit(9)),
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
	x := BuildXrefs(blocks)
	require.Equal(t, []uint32{2}, x.Reads("local_0"))
	require.Equal(t, []uint32{2}, x.Reads("local_1"))
	require.Empty(t, x.Writes("local_0"))
}

func TestInferTypesVotesByUsage(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0,
			Statements: []*ir.Stmt{
				ir.ExprStatement(ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1))),
				ir.ExprStatement(ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1))),
				ir.ExprStatement(ir.Index(ir.Ident("local_0"), ir.IntLit(0))),
				ir.ExprStatement(ir.HasKey(ir.Ident("local_1"), ir.Ident("local_2"))),
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
	hints := InferTypes(blocks)
	require.Equal(t, HintInteger, hints["local_0"]) // 2 Integer votes beat 1 Array vote
	require.Equal(t, HintMap, hints["local_1"])
	require.NotContains(t, hints, "local_2")
}

func TestInferTypesDeterministicTieBreak(t *testing.T) {
	blocks := map[ir.BlockID]*ir.BasicBlock{
		0: {
			ID: 0,
			Statements: []*ir.Stmt{
				ir.ExprStatement(ir.Binary("+", ir.Ident("local_0"), ir.IntLit(1))), // Integer
				ir.ExprStatement(ir.Index(ir.Ident("local_0"), ir.IntLit(0))),       // Array
			},
			Terminator: ir.ReturnTerm(nil),
		},
	}
	hints := InferTypes(blocks)
	require.Equal(t, HintInteger, hints["local_0"], "Integer outranks Array in the fixed priority order on a 1-1 tie")
}
