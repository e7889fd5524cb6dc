package callflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringNoneAndAll(t *testing.T) {
	require.Equal(t, "None", NoneFlag.String())
	require.Equal(t, "All", All.String())
}

func TestStringPrefersNamedGroupsOverIndividualBits(t *testing.T) {
	require.Equal(t, "States", States.String())
	require.Equal(t, "ReadOnly", ReadOnly.String())
}

func TestStringCombinesGroupAndRemainingSingleBits(t *testing.T) {
	f := States | AllowCall // ReadOnly's bits plus WriteStates, no AllowNotify
	require.Equal(t, "ReadOnly, WriteStates", f.String())
}

func TestStringSingleBit(t *testing.T) {
	require.Equal(t, "AllowNotify", AllowNotify.String())
}

func TestFromStringParsesEveryStringForm(t *testing.T) {
	cases := []CallFlag{NoneFlag, All, States, ReadOnly, ReadStates, AllowNotify, States | AllowCall}
	for _, want := range cases {
		got, err := FromString(want.String())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestFromStringRejectsUnknownName(t *testing.T) {
	_, err := FromString("NotARealFlag")
	require.Error(t, err)
}

func TestHasChecksAllBitsSet(t *testing.T) {
	require.True(t, All.Has(ReadStates))
	require.True(t, All.Has(States))
	require.False(t, ReadStates.Has(WriteStates))
}

func TestJSONRoundTrips(t *testing.T) {
	data, err := All.MarshalJSON()
	require.NoError(t, err)

	var got CallFlag
	require.NoError(t, got.UnmarshalJSON(data))
	require.Equal(t, All, got)
}
