package ssa

import (
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// Form is the SSA-renamed program: every basic block's statements and
// terminator with variable identifiers replaced by versioned names, plus
// the φ-assignments inserted at each block's head.
type Form struct {
	Dominance *Dominance
	Blocks    map[ir.BlockID]*ir.BasicBlock
}

// Build computes dominance and renames c's reachable blocks into minimal
// SSA form (§4.7): iterated-dominance-frontier φ-placement followed by a
// dominator-tree DFS renaming pass with a per-variable stack. Blocks are
// deep-copied; the input CFG's IR is left untouched.
func Build(c *cfg.Cfg, iterationCap int) (*Form, warning.List, error) {
	if iterationCap <= 0 {
		iterationCap = DefaultIterationCap
	}
	dom, warnings, err := ComputeDominance(c, iterationCap)
	if err != nil {
		return nil, warnings, err
	}

	blocks := cloneBlocks(c.Blocks, dom.RPO)
	if len(dom.RPO) == 0 {
		return &Form{Dominance: dom, Blocks: blocks}, warnings, nil
	}

	defs := collectDefs(blocks, dom.RPO)
	phiNames := placePhis(c, dom, blocks, defs)

	r := &renamer{
		c:        c,
		dom:      dom,
		blocks:   blocks,
		stacks:   make(map[string][]string),
		counter:  make(map[string]int),
		phiNames: phiNames,
		cap:      iterationCap,
	}
	if err := r.renameFrom(dom.RPO[0]); err != nil {
		warnings = warnings.Append(warning.New(warning.AnalysisLimitExceeded, map[string]any{"stage": "rename"}))
		return nil, warnings, err
	}
	return &Form{Dominance: dom, Blocks: blocks}, warnings, nil
}

func cloneBlocks(src map[ir.BlockID]*ir.BasicBlock, order []ir.BlockID) map[ir.BlockID]*ir.BasicBlock {
	out := make(map[ir.BlockID]*ir.BasicBlock, len(order))
	for _, id := range order {
		b := src[id]
		nb := &ir.BasicBlock{ID: b.ID, StartOffset: b.StartOffset, EndOffset: b.EndOffset, Terminator: b.Terminator}
		nb.Statements = append(nb.Statements, b.Statements...)
		out[id] = nb
	}
	return out
}

// collectDefs maps each assigned variable name to the blocks that define
// it, the input to iterated-dominance-frontier φ-placement.
func collectDefs(blocks map[ir.BlockID]*ir.BasicBlock, order []ir.BlockID) map[string][]ir.BlockID {
	defs := make(map[string][]ir.BlockID)
	for _, id := range order {
		for _, s := range blocks[id].Statements {
			if name, ok := assignTarget(s); ok {
				defs[name] = append(defs[name], id)
			}
		}
	}
	return defs
}

func assignTarget(s *ir.Stmt) (string, bool) {
	switch s.Kind {
	case ir.StmtAssign, ir.StmtCompoundAssign:
		if s.Target != nil && s.Target.Kind == ir.ExprIdent {
			return s.Target.Ident, true
		}
	}
	return "", false
}

// placePhis inserts one φ-assignment per variable at every block in its
// iterated dominance frontier, with one placeholder operand per
// predecessor edge (filled in during renaming). Returns, per block, the
// base variable name of each inserted phi in the same front-to-back order
// they now occupy as a statement prefix — renaming cannot recover this
// from the statements themselves once a phi's own target has been
// versioned.
func placePhis(c *cfg.Cfg, dom *Dominance, blocks map[ir.BlockID]*ir.BasicBlock, defs map[string][]ir.BlockID) map[ir.BlockID][]string {
	names := make([]string, 0, len(defs))
	for n := range defs {
		names = append(names, n)
	}
	sort.Strings(names)

	phiNames := make(map[ir.BlockID][]string)
	for _, name := range names {
		frontier := dom.IteratedFrontier(defs[name])
		for _, b := range frontier {
			if _, ok := blocks[b]; !ok {
				continue
			}
			predCount := len(c.Predecessors(b))
			if predCount < 2 {
				continue
			}
			args := make([]*ir.Expr, predCount)
			for i := range args {
				args[i] = ir.Ident(name)
			}
			phi := ir.Assign(ir.Ident(name), ir.Call(ir.CallDirect, "phi", nil, args))
			blocks[b].Statements = append([]*ir.Stmt{phi}, blocks[b].Statements...)
			phiNames[b] = append([]string{name}, phiNames[b]...)
		}
	}
	return phiNames
}

type renamer struct {
	c        *cfg.Cfg
	dom      *Dominance
	blocks   map[ir.BlockID]*ir.BasicBlock
	stacks   map[string][]string
	counter  map[string]int
	phiNames map[ir.BlockID][]string
	visits   int
	cap      int
}

func (r *renamer) push(name string) string {
	v := fmt.Sprintf("%s.%d", name, r.counter[name])
	r.counter[name]++
	r.stacks[name] = append(r.stacks[name], v)
	return v
}

func (r *renamer) top(name string) (string, bool) {
	s := r.stacks[name]
	if len(s) == 0 {
		return "", false
	}
	return s[len(s)-1], true
}

func (r *renamer) pop(name string) {
	s := r.stacks[name]
	if len(s) > 0 {
		r.stacks[name] = s[:len(s)-1]
	}
}

func (r *renamer) renameFrom(root ir.BlockID) error {
	var visit func(id ir.BlockID) error
	visit = func(id ir.BlockID) error {
		r.visits++
		if r.visits > r.cap {
			return &ErrAnalysisLimitExceeded{Stage: "rename"}
		}
		b := r.blocks[id]
		pushed := make([]string, 0)
		phiCount := len(r.phiNames[id])

		for i, s := range b.Statements {
			if i < phiCount {
				name := r.phiNames[id][i]
				s.Target.Ident = r.push(name)
				pushed = append(pushed, name)
				continue
			}
			renameReadsInStmt(s, r.top)
			if name, ok := assignTarget(s); ok {
				s.Target.Ident = r.push(name)
				pushed = append(pushed, name)
			}
		}
		renameReadsInTerminator(&b.Terminator, r.top)

		for _, e := range r.c.Successors(id) {
			succ := r.blocks[e.To]
			if succ == nil {
				continue
			}
			predIdx := predecessorIndex(r.c, e.To, id)
			fillPhiOperand(succ, predIdx, r.phiNames[e.To], r.stacks)
		}

		for _, kid := range r.dom.Children[id] {
			if err := visit(kid); err != nil {
				return err
			}
		}
		for _, name := range pushed {
			r.pop(name)
		}
		return nil
	}
	return visit(root)
}

// IsPhi reports whether s is a φ-assignment (an Assign whose Source is a
// CallDirect "phi" expression) and returns its current target name, for
// callers downstream of renaming that want to print phis distinctly.
func IsPhi(s *ir.Stmt) (string, bool) {
	if s.Kind != ir.StmtAssign || s.Source == nil {
		return "", false
	}
	if s.Source.Kind != ir.ExprCall || s.Source.CallKind != ir.CallDirect || s.Source.Callee != "phi" {
		return "", false
	}
	if s.Target == nil || s.Target.Kind != ir.ExprIdent {
		return "", false
	}
	return s.Target.Ident, true
}

func predecessorIndex(c *cfg.Cfg, block, pred ir.BlockID) int {
	for i, e := range c.Predecessors(block) {
		if e.From == pred {
			return i
		}
	}
	return 0
}

// fillPhiOperand sets predIdx's operand of every φ-assignment occupying
// succ's statement prefix to the current reaching definition of its base
// variable, read from names (the base names recorded by placePhis, since
// the phi statements' own Target.Ident may already have been renamed by
// the time a later-visited predecessor fills its slot — e.g. a loop back
// edge, whose source is a dominator-tree descendant of the header it
// targets).
func fillPhiOperand(succ *ir.BasicBlock, predIdx int, names []string, stacks map[string][]string) {
	for i, name := range names {
		s := succ.Statements[i]
		if predIdx >= len(s.Source.Args) {
			continue
		}
		if stack := stacks[name]; len(stack) > 0 {
			s.Source.Args[predIdx] = ir.Ident(stack[len(stack)-1])
		}
	}
}

// renameReadsInStmt rewrites every Ident read (never the assignment
// target itself) inside s to its current SSA version via top.
func renameReadsInStmt(s *ir.Stmt, top func(string) (string, bool)) {
	switch s.Kind {
	case ir.StmtAssign, ir.StmtCompoundAssign:
		renameReadsInExpr(s.Source, top)
		if s.Target != nil && s.Target.Kind != ir.ExprIdent {
			renameReadsInExpr(s.Target, top) // e.g. indexed assignment target
		}
	case ir.StmtExpr, ir.StmtReturn, ir.StmtAbort, ir.StmtThrow:
		renameReadsInExpr(s.Expr, top)
	case ir.StmtIf:
		renameReadsInExpr(s.Cond, top)
	case ir.StmtWhile, ir.StmtDoWhile:
		renameReadsInExpr(s.Cond, top)
	case ir.StmtFor:
		renameReadsInExpr(s.Cond, top)
	case ir.StmtSwitch:
		renameReadsInExpr(s.Subject, top)
		for _, c := range s.Cases {
			renameReadsInExpr(c.Value, top)
		}
	}
}

func renameReadsInTerminator(t *ir.Terminator, top func(string) (string, bool)) {
	switch t.Kind {
	case ir.TermBranch:
		renameReadsInExpr(t.Cond, top)
	case ir.TermReturn:
		renameReadsInExpr(t.Value, top)
	}
}

func renameReadsInExpr(e *ir.Expr, top func(string) (string, bool)) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ir.ExprIdent:
		if v, ok := top(e.Ident); ok {
			e.Ident = v
		}
	case ir.ExprBinary:
		renameReadsInExpr(e.Lhs, top)
		renameReadsInExpr(e.Rhs, top)
	case ir.ExprUnary, ir.ExprCast:
		renameReadsInExpr(e.Lhs, top)
		renameReadsInExpr(e.Target, top)
	case ir.ExprCall:
		renameReadsInExpr(e.CalleeExpr, top)
		for _, a := range e.Args {
			renameReadsInExpr(a, top)
		}
	case ir.ExprIndex, ir.ExprHasKey:
		renameReadsInExpr(e.Target, top)
		renameReadsInExpr(e.Index, top)
	}
}
