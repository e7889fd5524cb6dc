package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

func TestRenderReturnLiteral(t *testing.T) {
	stmts := []*ir.Stmt{ir.Return(ir.IntLit(1))}
	require.Equal(t, "return 1;\n", Render(stmts, HighLevel))
}

func TestRenderVoidSyscallIsBareExprStatement(t *testing.T) {
	stmts := []*ir.Stmt{
		ir.ExprStatement(ir.Call(ir.CallSyscall, "System.Runtime.Log", nil, []*ir.Expr{ir.BytesLit([]byte("hi"))})),
	}
	require.Equal(t, `System.Runtime.Log("hi");`+"\n", Render(stmts, HighLevel))
}

func TestRenderUnknownOpcodeRawThenReturn(t *testing.T) {
	stmts := []*ir.Stmt{
		ir.Raw("0000: UNKNOWN(0xea) (not yet translated)"),
		ir.Return(nil),
	}
	require.Equal(t, "// 0000: UNKNOWN(0xea) (not yet translated)\nreturn;\n", Render(stmts, HighLevel))
}

func TestRenderPseudocodeHasNoSemicolonsOrBraces(t *testing.T) {
	stmts := []*ir.Stmt{
		ir.If(ir.BoolLit(true), []*ir.Stmt{ir.Return(ir.IntLit(1))}, nil),
	}
	out := Render(stmts, Pseudocode)
	require.NotContains(t, out, ";")
	require.NotContains(t, out, "{")
}

func TestRenderFirstWriteDeclaresVar(t *testing.T) {
	stmts := []*ir.Stmt{
		ir.Assign(ir.Ident("local_0"), ir.IntLit(1)),
		ir.Assign(ir.Ident("local_0"), ir.IntLit(2)),
	}
	out := Render(stmts, HighLevel)
	require.Equal(t, "var local_0 = 1;\nlocal_0 = 2;\n", out)
}

func TestRenderHidesSSAVersionSuffix(t *testing.T) {
	stmts := []*ir.Stmt{ir.Return(ir.Ident("local_0.2"))}
	require.Equal(t, "return local_0;\n", Render(stmts, HighLevel))
}

func TestRenderForLoop(t *testing.T) {
	init := ir.Assign(ir.Ident("local_0"), ir.IntLit(0))
	step := ir.CompoundAssign(ir.Ident("local_0"), "+", ir.IntLit(1))
	cond := ir.Binary("<", ir.Ident("local_0"), ir.IntLit(3))
	stmts := []*ir.Stmt{ir.For(init, cond, step, nil)}
	out := Render(stmts, HighLevel)
	require.Equal(t, "for (var local_0 = 0; local_0 < 3; local_0 += 1) {\n}\n", out)
}
