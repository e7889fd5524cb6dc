// Command neodec is a thin CLI over pkg/decompile: info/disasm/decompile
// against a NEF file, optionally paired with its manifest. It is a
// demonstration collaborator, not a full realization of every flag and
// JSON schema the external CLI surface describes.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
)

func main() {
	app := cli.NewApp()
	app.Name = "neodec"
	app.Usage = "Static decompiler for Neo N3 smart-contract bytecode"
	app.Version = "0.1.0"
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "manifest", Usage: "path to the contract manifest JSON"},
		cli.BoolFlag{Name: "strict-manifest", Usage: "reject non-canonical wildcard spellings in the manifest"},
	}
	app.Commands = []cli.Command{
		infoCommand(),
		disasmCommand(),
		decompileCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func readNEF(c *cli.Context) ([]byte, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.NewExitError("missing NEF file path", 1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 1)
	}
	return data, nil
}

func loadManifest(c *cli.Context) (*manifest.ContractManifest, error) {
	path := c.GlobalString("manifest")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 1)
	}
	m, err := manifest.Parse(data, c.GlobalBool("strict-manifest"))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 1)
	}
	return m, nil
}
