package bio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderWriterPrimitivesRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteB(0xAB)
	w.WriteBool(true)
	w.WriteU16LE(0x1234)
	w.WriteU32LE(0xdeadbeef)
	w.WriteU64LE(0x0102030405060708)
	w.WriteVarBytes([]byte("hello"))
	w.WriteFixedString("neo", 8)
	require.NoError(t, w.Err)

	r := NewReaderFromBuf(w.Bytes())
	require.Equal(t, byte(0xAB), r.ReadB())
	require.True(t, r.ReadBool())
	require.Equal(t, uint16(0x1234), r.ReadU16LE())
	require.Equal(t, uint32(0xdeadbeef), r.ReadU32LE())
	require.Equal(t, uint64(0x0102030405060708), r.ReadU64LE())
	require.Equal(t, []byte("hello"), r.ReadVarBytes(0))
	require.Equal(t, "neo", r.ReadFixedString(8))
	require.NoError(t, r.Err)
	require.Zero(t, r.Len())
}

func TestReadVarUintWidthSelection(t *testing.T) {
	cases := []uint64{0, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000}
	for _, n := range cases {
		w := NewWriter()
		w.WriteVarUint(n)
		r := NewReaderFromBuf(w.Bytes())
		require.Equal(t, n, r.ReadVarUint())
		require.NoError(t, r.Err)
	}
}

func TestReadVarBytesRejectsOverMax(t *testing.T) {
	w := NewWriter()
	w.WriteVarBytes([]byte("toolong"))
	r := NewReaderFromBuf(w.Bytes())
	r.ReadVarBytes(3)
	require.ErrorIs(t, r.Err, ErrTooLarge)
}

func TestReaderLatchesFirstErrorAndStaysZero(t *testing.T) {
	r := NewReaderFromBuf([]byte{0x01})
	require.Equal(t, byte(0x01), r.ReadB())
	// nothing left to read: this read fails and latches Err.
	_ = r.ReadU32LE()
	require.ErrorIs(t, r.Err, io.ErrUnexpectedEOF)
	// further reads are no-ops returning the zero value, not panics.
	require.Equal(t, uint16(0), r.ReadU16LE())
	require.Empty(t, r.ReadBytes(4))
}

func TestReadFixedStringTrimsNulPadding(t *testing.T) {
	w := NewWriter()
	w.WriteFixedString("go", 5)
	r := NewReaderFromBuf(w.Bytes())
	require.Equal(t, "go", r.ReadFixedString(5))
}

func TestWriterLatchesErrAndStopsAppending(t *testing.T) {
	w := NewWriter()
	w.Err = io.ErrUnexpectedEOF
	w.WriteB(0x01)
	require.Empty(t, w.Bytes())
}
