package disasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassembleCoversWholeScriptNoGaps(t *testing.T) {
	script := []byte{0x21, 0x40} // NOP; RET
	res, err := Disassemble(script, Options{})
	require.NoError(t, err)
	require.Len(t, res.Instructions, 2)
	require.Equal(t, uint32(0), res.Instructions[0].Offset)
	require.Equal(t, uint32(1), res.Instructions[1].Offset)
	require.Empty(t, res.Warnings)
}

func TestDisassembleTolerantUnknownOpcodeWarns(t *testing.T) {
	script := []byte{0xff} // not a defined mnemonic
	res, err := Disassemble(script, Options{})
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)
	require.NotEmpty(t, res.Warnings)
}

func TestDisassembleStrictUnknownOpcodeFails(t *testing.T) {
	script := []byte{0xff}
	_, err := Disassemble(script, Options{FailOnUnknown: true})
	require.Error(t, err)
	var unk *UnknownOpcodeError
	require.ErrorAs(t, err, &unk)
}

func TestDisassembleEmptyScriptYieldsNoInstructions(t *testing.T) {
	res, err := Disassemble(nil, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Instructions)
}

func TestDisassembleTruncatedOperandIsFatal(t *testing.T) {
	// PUSHDATA1 declares a length byte then needs that many data bytes;
	// here it claims 5 but the script ends immediately.
	script := []byte{0x0c, 0x05}
	_, err := Disassemble(script, Options{})
	require.Error(t, err)
	var trunc *TruncatedError
	require.ErrorAs(t, err, &trunc)
}
