package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/nspcc-dev/neo-decompiler/pkg/nef"
)

func infoCommand() cli.Command {
	return cli.Command{
		Name:      "info",
		Usage:     "Print a NEF container's header, checksum, and method tokens",
		ArgsUsage: "<file.nef>",
		Action:    runInfo,
	}
}

func runInfo(c *cli.Context) error {
	data, err := readNEF(c)
	if err != nil {
		return err
	}
	file, err := nef.FileFromBytes(data)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if checksum := file.CalculateChecksum(); checksum != file.Checksum {
		return cli.NewExitError((&nef.ChecksumError{Expected: checksum, Actual: file.Checksum}).Error(), 1)
	}

	fmt.Printf("compiler:  %s\n", file.Header.Compiler)
	fmt.Printf("source:    %s\n", file.Header.Source)
	fmt.Printf("checksum:  %08x\n", file.Checksum)
	fmt.Printf("script:    %d bytes\n", len(file.Script))
	fmt.Printf("tokens:    %d\n", len(file.Tokens))
	for i, t := range file.Tokens {
		fmt.Printf("  [%d] %s.%s(%d args, returns=%v) flags=%s\n", i, t.Hash.StringLE(), t.Method, t.ParamCount, t.HasReturn, t.CallFlag)
	}

	if m, err := loadManifest(c); err != nil {
		return err
	} else if m != nil {
		fmt.Printf("manifest:  %s (%d methods, %d events)\n", m.Name, len(m.ABI.Methods), len(m.ABI.Events))
	}
	return nil
}
