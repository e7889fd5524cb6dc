package warning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringNoFields(t *testing.T) {
	w := New(UnknownOpcode, nil)
	require.Equal(t, "unknown_opcode", w.String())
}

func TestStringOrdersPreferredFieldsFirst(t *testing.T) {
	w := New(SlotCapacityExceeded, map[string]any{"index": 3, "offset": 10})
	require.Equal(t, "slot_capacity_exceeded{offset=10, index=3}", w.String())
}

func TestStringIsDeterministicAcrossCalls(t *testing.T) {
	fields := map[string]any{"offset": 1, "byte": 2, "stage": "lift"}
	w := New(UnknownOpcode, fields)
	first := w.String()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, w.String())
	}
}

func TestAppendDoesNotMutateOriginalList(t *testing.T) {
	base := List{New(UnknownOpcode, nil)}
	extended := base.Append(New(StackUnderflow, nil))
	require.Len(t, base, 1)
	require.Len(t, extended, 2)
}
