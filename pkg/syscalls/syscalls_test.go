package syscalls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministic(t *testing.T) {
	require.Equal(t, Hash("System.Runtime.Log"), Hash("System.Runtime.Log"))
	require.NotEqual(t, Hash("System.Runtime.Log"), Hash("System.Runtime.Notify"))
}

func TestByNameResolvesKnownService(t *testing.T) {
	info, ok := ByName("System.Runtime.CheckWitness")
	require.True(t, ok)
	require.Equal(t, 1, info.ParamCount)
	require.True(t, info.ReturnsValue)
}

func TestByNameUnknownServiceFails(t *testing.T) {
	_, ok := ByName("System.NoSuchService")
	require.False(t, ok)
}

func TestLookupByHashMatchesByName(t *testing.T) {
	want, ok := ByName("System.Runtime.Notify")
	require.True(t, ok)
	got, ok := Lookup(Hash("System.Runtime.Notify"))
	require.True(t, ok)
	require.Equal(t, want, got)
	require.False(t, got.ReturnsValue)
	require.Equal(t, 2, got.ParamCount)
}

func TestTableIsSortedByHash(t *testing.T) {
	var prev uint32
	for i, e := range table {
		if i > 0 {
			require.GreaterOrEqual(t, e.Hash, prev)
		}
		prev = e.Hash
	}
}
