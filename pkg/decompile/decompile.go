// Package decompile orchestrates the full pipeline — NEF parsing through
// rendered output — into the single aggregate result callers consume
// (§3's Decompilation). It is the only layer allowed to hold a logger
// (go.uber.org/zap, matching the teacher's diagnostic style); every
// package below it returns plain errors and warning.List values.
package decompile

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nspcc-dev/neo-decompiler/pkg/analysis"
	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/disasm"
	"github.com/nspcc-dev/neo-decompiler/pkg/lifter"
	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
	"github.com/nspcc-dev/neo-decompiler/pkg/natives"
	"github.com/nspcc-dev/neo-decompiler/pkg/nef"
	"github.com/nspcc-dev/neo-decompiler/pkg/render"
	"github.com/nspcc-dev/neo-decompiler/pkg/ssa"
	"github.com/nspcc-dev/neo-decompiler/pkg/structure"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// Options controls one decompile pass.
type Options struct {
	// FailOnUnknownOpcodes switches disassembly to strict mode (§4.3).
	FailOnUnknownOpcodes bool
	// Manifest optionally supplies ABI method names/offsets (§4.8/§4.4).
	Manifest     *manifest.ContractManifest
	ManifestPath string
	// IterationCap bounds dominance/SSA fixpoint work; 0 uses the
	// package default (ssa.DefaultIterationCap).
	IterationCap int
	// Logger receives pipeline-stage diagnostics; nil discards them.
	Logger *zap.Logger
}

// Decompilation is the orchestration aggregate: every artifact produced
// by one call to Decompile, owned by the caller from there.
type Decompilation struct {
	NEF          *nef.File
	Manifest     *manifest.ContractManifest
	ManifestPath string
	Instructions []disasm.Instruction
	CFG          *cfg.Cfg
	CallGraph    *analysis.CallGraph
	Xrefs        analysis.Xrefs
	Types        map[string]analysis.Hint
	Pseudocode   string
	HighLevel    string
	CSharp       string
	Warnings     warning.List

	iterationCap int
	ssaOnce      sync.Once
	ssaForm      *ssa.Form
	ssaErr       error
}

// SSA lazily computes and caches minimal SSA form over d.CFG (§9 "Lazy
// SSA"): callers that only need pseudocode/high_level/csharp never pay
// for dominance-frontier φ-placement or renaming.
func (d *Decompilation) SSA() (*ssa.Form, error) {
	d.ssaOnce.Do(func() {
		d.ssaForm, _, d.ssaErr = ssa.Build(d.CFG, d.iterationCap)
	})
	return d.ssaForm, d.ssaErr
}

// Decompile runs the full pipeline over a raw NEF container: parse and
// verify the checksum, disassemble, lift to IR, build the CFG, recover
// structured control flow, render every textual form, and layer the
// analysis views (call graph, xrefs, type hints) on top.
func Decompile(nefBytes []byte, opts Options) (*Decompilation, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	file, err := nef.FileFromBytes(nefBytes)
	if err != nil {
		return nil, fmt.Errorf("decompile: parse nef: %w", err)
	}
	if checksum := file.CalculateChecksum(); checksum != file.Checksum {
		return nil, &nef.ChecksumError{Expected: checksum, Actual: file.Checksum}
	}
	log.Debug("nef parsed", zap.Int("script_bytes", len(file.Script)), zap.Int("tokens", len(file.Tokens)))

	res, err := disasm.Disassemble(file.Script, disasm.Options{FailOnUnknown: opts.FailOnUnknownOpcodes})
	if err != nil {
		return nil, fmt.Errorf("decompile: disassemble: %w", err)
	}
	var warnings warning.List
	warnings = append(warnings, res.Warnings...)

	liftOpts := lifter.Options{
		Manifest:     opts.Manifest,
		MethodTokens: methodTokenInfos(file.Tokens),
	}
	prog, err := lifter.Lift(res.Instructions, liftOpts)
	if err != nil {
		return nil, fmt.Errorf("decompile: lift: %w", err)
	}
	warnings = append(warnings, prog.Warnings...)
	log.Debug("lifted", zap.Int("blocks", len(prog.Blocks)), zap.Int("warnings", len(prog.Warnings)))

	c := cfg.Build(prog.Blocks, prog.Entry)

	dom, domWarnings, err := ssa.ComputeDominance(c, opts.IterationCap)
	if err != nil {
		return nil, fmt.Errorf("decompile: dominance: %w", err)
	}
	warnings = append(warnings, domWarnings...)

	stmts, structWarnings := structure.Recover(c, dom)
	warnings = append(warnings, structWarnings...)

	cg := analysis.BuildCallGraph(c.Blocks, opts.Manifest)
	xrefs := analysis.BuildXrefs(c.Blocks)
	types := analysis.InferTypes(c.Blocks)

	d := &Decompilation{
		NEF:          &file,
		Manifest:     opts.Manifest,
		ManifestPath: opts.ManifestPath,
		Instructions: res.Instructions,
		CFG:          c,
		CallGraph:    cg,
		Xrefs:        xrefs,
		Types:        types,
		Pseudocode:   render.Render(stmts, render.Pseudocode),
		HighLevel:    render.Render(stmts, render.HighLevel),
		CSharp:       render.Render(stmts, render.CSharp),
		Warnings:     warnings,
		iterationCap: opts.IterationCap,
	}
	log.Info("decompile complete", zap.Int("blocks", len(c.Blocks)), zap.Int("warnings", len(warnings)),
		zap.Int("call_edges", len(cg.Edges)))
	return d, nil
}

// methodTokenInfos resolves each NEF method token's native-contract label
// (when its hash matches a known native), the lifter's only use for the
// natives table at call sites (§4.8 supplement).
func methodTokenInfos(tokens []nef.MethodToken) []lifter.MethodTokenInfo {
	out := make([]lifter.MethodTokenInfo, len(tokens))
	for i, t := range tokens {
		label := ""
		if c, ok := natives.Lookup(t.Hash); ok {
			label = c.Label
		}
		out[i] = lifter.MethodTokenInfo{
			ContractLabel: label,
			Method:        t.Method,
			ParamCount:    int(t.ParamCount),
			HasReturn:     t.HasReturn,
		}
	}
	return out
}

// Stats summarizes the call graph for the trailing "// call graph:"
// comment line that `neodec decompile` prints after the rendered output
// (SPEC SUPPLEMENTED FEATURES: mirrors neo-go's pkg/compiler/debug.go
// habit of emitting a short debug summary alongside generated code).
type Stats struct {
	Methods        int
	Edges          int
	UnresolvedEdges int
}

// CallGraphStats computes Stats for cg.
func CallGraphStats(cg *analysis.CallGraph) Stats {
	s := Stats{Methods: len(cg.Nodes), Edges: len(cg.Edges)}
	for _, e := range cg.Edges {
		if e.To == analysis.UnknownNode {
			s.UnresolvedEdges++
		}
	}
	return s
}
