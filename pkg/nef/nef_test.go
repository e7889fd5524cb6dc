package nef

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/neo-decompiler/pkg/util160"
)

func minimalFile() *File {
	f := &File{
		Header: Header{Magic: Magic, Compiler: "neo-decompiler-test", Source: ""},
		Script: []byte{0x21, 0x40}, // NOP; RET
	}
	f.Checksum = f.CalculateChecksum()
	return f
}

func TestBytesThenFileFromBytesRoundTrips(t *testing.T) {
	f := minimalFile()
	raw, err := f.Bytes()
	require.NoError(t, err)

	got, err := FileFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, f.Header.Magic, got.Header.Magic)
	require.Equal(t, f.Header.Compiler, got.Header.Compiler)
	require.Equal(t, f.Script, got.Script)
	require.Equal(t, f.Checksum, got.Checksum)
}

func TestFileFromBytesRejectsBadChecksum(t *testing.T) {
	f := minimalFile()
	raw, err := f.Bytes()
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff // corrupt the trailing checksum byte

	_, err = FileFromBytes(raw)
	require.Error(t, err)
	var checksumErr *ChecksumError
	require.ErrorAs(t, err, &checksumErr)
}

func TestFileFromBytesRejectsBadMagic(t *testing.T) {
	f := minimalFile()
	raw, err := f.Bytes()
	require.NoError(t, err)
	raw[0] ^= 0xff // corrupt the first magic byte, read before the checksum check

	_, err = FileFromBytes(raw)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestBytesRejectsEmptyScript(t *testing.T) {
	f := minimalFile()
	f.Script = nil
	f.Checksum = 0
	_, err := f.Bytes()
	require.ErrorIs(t, err, ErrEmptyScript)
}

func TestBytesRejectsReservedMethodName(t *testing.T) {
	f := minimalFile()
	f.Tokens = []MethodToken{{Method: "_reserved"}}
	_, err := f.Bytes()
	require.ErrorIs(t, err, ErrReservedMethod)
}

func TestMarshalUnmarshalJSONRoundTrips(t *testing.T) {
	f := minimalFile()
	f.Tokens = []MethodToken{{Hash: util160.Hash160{}, Method: "transfer", ParamCount: 3, HasReturn: true}}

	data, err := f.MarshalJSON()
	require.NoError(t, err)

	var got File
	require.NoError(t, got.UnmarshalJSON(data))
	require.Equal(t, f.Header.Magic, got.Header.Magic)
	require.Equal(t, f.Script, got.Script)
	require.Len(t, got.Tokens, 1)
	require.Equal(t, "transfer", got.Tokens[0].Method)
}
