package decompile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/nef"
)

func buildNEF(t *testing.T, script []byte) []byte {
	t.Helper()
	f := &nef.File{
		Header: nef.Header{Magic: nef.Magic, Compiler: "neo-decompiler-test"},
		Script: script,
	}
	f.Checksum = f.CalculateChecksum()
	raw, err := f.Bytes()
	require.NoError(t, err)
	return raw
}

// PUSHINT8 1; RET -- the simplest possible "return 1;" contract.
func TestDecompileReturnLiteral(t *testing.T) {
	raw := buildNEF(t, []byte{0x00, 0x01, 0x40})

	d, err := Decompile(raw, Options{})
	require.NoError(t, err)
	require.Equal(t, "return 1;\n", d.HighLevel)
	require.Empty(t, d.Warnings)

	stats := CallGraphStats(d.CallGraph)
	require.Equal(t, 1, stats.Methods) // only script_entry; no calls at all
	require.Zero(t, stats.Edges)
}

func TestDecompileRejectsChecksumMismatch(t *testing.T) {
	raw := buildNEF(t, []byte{0x00, 0x01, 0x40})
	raw[len(raw)-1] ^= 0xff

	_, err := Decompile(raw, Options{})
	require.Error(t, err)
	var checksumErr *nef.ChecksumError
	require.ErrorAs(t, err, &checksumErr)
}

func TestDecompileStrictModeFailsOnUnknownOpcode(t *testing.T) {
	raw := buildNEF(t, []byte{0xff})

	_, err := Decompile(raw, Options{FailOnUnknownOpcodes: true})
	require.Error(t, err)
}

func TestDecompileSSAIsLazyAndCached(t *testing.T) {
	raw := buildNEF(t, []byte{0x00, 0x01, 0x40})
	d, err := Decompile(raw, Options{})
	require.NoError(t, err)

	form1, err := d.SSA()
	require.NoError(t, err)
	form2, err := d.SSA()
	require.NoError(t, err)
	require.Same(t, form1, form2, "SSA() must cache its result via sync.Once")
}
