package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const baseManifest = `{
	"name": "TestContract",
	"groups": [],
	"features": {},
	"supportedstandards": ["NEP-17"],
	"abi": {
		"methods": [{"name":"main","offset":0,"parameters":[],"returntype":"Any","safe":false}],
		"events": []
	},
	"permissions": [{"contract": %q, "methods": "*"}],
	"trusts": "*"
}`

func TestParseCanonicalWildcardsAlwaysAccepted(t *testing.T) {
	doc := []byte(`{"name":"T","abi":{"methods":[],"events":[]},"permissions":[{"contract":"*","methods":"*"}],"trusts":"*"}`)
	for _, strict := range []bool{true, false} {
		m, err := Parse(doc, strict)
		require.NoError(t, err)
		require.True(t, m.Permissions[0].Contract.IsWildcard)
		require.True(t, m.Trusts.IsWildcard)
	}
}

func TestParseStrictRejectsNonCanonicalWildcardSpelling(t *testing.T) {
	doc := []byte(`{"name":"T","abi":{"methods":[],"events":[]},"permissions":[{"contract":"any","methods":"*"}],"trusts":"*"}`)
	_, err := Parse(doc, true)
	require.ErrorIs(t, err, ErrManifestValidation)
}

func TestParseTolerantAcceptsNonCanonicalWildcardSpelling(t *testing.T) {
	doc := []byte(`{"name":"T","abi":{"methods":[],"events":[]},"permissions":[{"contract":"any","methods":"*"}],"trusts":"*"}`)
	m, err := Parse(doc, false)
	require.NoError(t, err)
	require.True(t, m.Permissions[0].Contract.IsWildcard)
}

func TestParseRejectsOversizedDocument(t *testing.T) {
	big := make([]byte, MaxManifestSize+1)
	_, err := Parse(big, false)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`), false)
	require.Error(t, err)
}

func TestMethodByOffset(t *testing.T) {
	m := &ContractManifest{}
	m.ABI.Methods = []Method{{Name: "main", Offset: 42}}
	got, ok := m.MethodByOffset(42)
	require.True(t, ok)
	require.Equal(t, "main", got.Name)

	_, ok = m.MethodByOffset(7)
	require.False(t, ok)
}
