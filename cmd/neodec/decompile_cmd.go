package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/nspcc-dev/neo-decompiler/pkg/decompile"
)

func decompileCommand() cli.Command {
	return cli.Command{
		Name:      "decompile",
		Usage:     "Recover structured pseudocode/high-level/C# output from a NEF container",
		ArgsUsage: "<file.nef>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "format", Value: "high-level", Usage: "text|pseudocode|csharp|high-level"},
			cli.BoolFlag{Name: "fail-on-unknown-opcodes"},
		},
		Action: runDecompile,
	}
}

func runDecompile(c *cli.Context) error {
	data, err := readNEF(c)
	if err != nil {
		return err
	}
	m, err := loadManifest(c)
	if err != nil {
		return err
	}

	d, err := decompile.Decompile(data, decompile.Options{
		FailOnUnknownOpcodes: c.Bool("fail-on-unknown-opcodes"),
		Manifest:             m,
		ManifestPath:         c.GlobalString("manifest"),
		Logger:               newLogger(c),
	})
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	switch c.String("format") {
	case "pseudocode":
		fmt.Print(d.Pseudocode)
	case "csharp":
		fmt.Print(d.CSharp)
	default:
		fmt.Print(d.HighLevel)
	}
	for _, w := range d.Warnings {
		fmt.Printf("// warning: %s\n", w.String())
	}
	stats := decompile.CallGraphStats(d.CallGraph)
	fmt.Printf("// call graph: %d nodes, %d edges, %d unresolved\n", stats.Methods, stats.Edges, stats.UnresolvedEdges)
	return nil
}
