package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownOpcode(t *testing.T) {
	info := Lookup(0x40)
	require.Equal(t, "RET", info.Mnemonic)
	require.Equal(t, TermReturn, info.Term)
}

func TestLookupUnknownOpcodeYieldsEmptyMnemonic(t *testing.T) {
	info := Lookup(0xff)
	require.Empty(t, info.Mnemonic)
	require.False(t, IsKnown(0xff))
}

func TestOpCodeStringAndInfoAgree(t *testing.T) {
	op := OpCode(0x9E) // ADD
	require.Equal(t, "ADD", op.String())
	require.Equal(t, op.Info().Mnemonic, op.String())
}

func TestFromStringRoundTripsWithLookup(t *testing.T) {
	op, err := FromString("SYSCALL")
	require.NoError(t, err)
	require.Equal(t, byte(0x41), byte(op))
	require.Equal(t, "SYSCALL", Lookup(byte(op)).Mnemonic)
}

func TestFromStringRejectsUnknownMnemonic(t *testing.T) {
	_, err := FromString("NOTANOPCODE")
	require.Error(t, err)
}
