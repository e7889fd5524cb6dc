package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/nspcc-dev/neo-decompiler/pkg/nef"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func contextWithArgs(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, fs.Parse(args))
	return cli.NewContext(cli.NewApp(), fs, nil)
}

func TestReadNEFMissingPathFails(t *testing.T) {
	c := contextWithArgs(t)
	_, err := readNEF(c)
	require.Error(t, err)
}

func TestReadNEFReadsFileContents(t *testing.T) {
	f := &nef.File{Header: nef.Header{Magic: nef.Magic}, Script: []byte{0x21, 0x40}}
	f.Checksum = f.CalculateChecksum()
	raw, err := f.Bytes()
	require.NoError(t, err)

	path := writeTemp(t, "test.nef", raw)
	c := contextWithArgs(t, path)
	got, err := readNEF(c)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

// globalContext builds a parent/child context pair the way urfave/cli does
// for a subcommand invocation: GlobalString/GlobalBool only resolve through
// a context's parent, never its own flag set.
func globalContext(t *testing.T, manifestPath string, strict bool) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = []cli.Flag{cli.StringFlag{Name: "manifest"}, cli.BoolFlag{Name: "strict-manifest"}}

	globalSet := flag.NewFlagSet("global", flag.ContinueOnError)
	globalSet.String("manifest", "", "")
	globalSet.Bool("strict-manifest", false, "")
	require.NoError(t, globalSet.Set("manifest", manifestPath))
	if strict {
		require.NoError(t, globalSet.Set("strict-manifest", "true"))
	}
	parent := cli.NewContext(app, globalSet, nil)

	childSet := flag.NewFlagSet("child", flag.ContinueOnError)
	return cli.NewContext(app, childSet, parent)
}

func TestLoadManifestNoFlagReturnsNilWithoutError(t *testing.T) {
	c := globalContext(t, "", false)
	m, err := loadManifest(c)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestLoadManifestParsesGivenFile(t *testing.T) {
	doc := []byte(`{"name":"T","abi":{"methods":[],"events":[]},"permissions":[],"trusts":"*"}`)
	path := writeTemp(t, "test.manifest.json", doc)

	c := globalContext(t, path, false)
	m, err := loadManifest(c)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "T", m.Name)
}

func TestLoadManifestStrictRejectsNonCanonicalWildcard(t *testing.T) {
	doc := []byte(`{"name":"T","abi":{"methods":[],"events":[]},"permissions":[{"contract":"any","methods":"*"}],"trusts":"*"}`)
	path := writeTemp(t, "test.manifest.json", doc)

	c := globalContext(t, path, true)
	_, err := loadManifest(c)
	require.Error(t, err)
}
