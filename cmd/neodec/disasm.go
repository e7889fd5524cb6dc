package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/nspcc-dev/neo-decompiler/pkg/disasm"
	"github.com/nspcc-dev/neo-decompiler/pkg/nef"
)

func disasmCommand() cli.Command {
	return cli.Command{
		Name:      "disasm",
		Usage:     "Linear-sweep disassemble a NEF container's script",
		ArgsUsage: "<file.nef>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "fail-on-unknown-opcodes", Usage: "treat an undecodable opcode as fatal instead of tolerant"},
		},
		Action: runDisasm,
	}
}

func runDisasm(c *cli.Context) error {
	data, err := readNEF(c)
	if err != nil {
		return err
	}
	file, err := nef.FileFromBytes(data)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	res, err := disasm.Disassemble(file.Script, disasm.Options{FailOnUnknown: c.Bool("fail-on-unknown-opcodes")})
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for _, ins := range res.Instructions {
		fmt.Printf("%04x: %s\n", ins.Offset, ins.Op.Info().Mnemonic)
	}
	for _, w := range res.Warnings {
		fmt.Printf("// warning: %s\n", w.String())
	}
	return nil
}
