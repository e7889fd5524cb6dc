// Package structure recovers structured control flow (§4.6) from a lifted
// CFG: if/else from dominance-bounded branch regions, while and do-while
// loops from back edges (pretest when the header itself branches, posttest
// when the test sits at the latch), switch from equality-tested if/else-if
// chains, and try/catch/finally from TryEnter terminators. Patterns that
// don't fit these shapes (irreducible branches, loops this pass doesn't
// recognize) fall back to Label/Goto so every reachable block is still
// represented exactly once.
package structure

import (
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/ssa"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

const noStop ir.BlockID = -1

type loopHeader struct {
	body    map[ir.BlockID]bool
	latches []ir.BlockID
}

type loopCtx struct {
	active  bool
	header  ir.BlockID
	exit    ir.BlockID
	hasExit bool
}

type recoverer struct {
	c        *cfg.Cfg
	dom      *ssa.Dominance
	order    []ir.BlockID
	rpoIndex map[ir.BlockID]int
	headers  map[ir.BlockID]*loopHeader
	expanded map[ir.BlockID]bool
	visited  map[ir.BlockID]bool
	warnings warning.List
}

// Recover structures c's reachable blocks into a statement tree, given a
// dominator tree already computed for c (via ssa.ComputeDominance).
func Recover(c *cfg.Cfg, dom *ssa.Dominance) ([]*ir.Stmt, warning.List) {
	order := c.ReachablePostOrder()
	if len(order) == 0 {
		return nil, nil
	}
	r := &recoverer{
		c:        c,
		dom:      dom,
		order:    order,
		rpoIndex: make(map[ir.BlockID]int, len(order)),
		headers:  make(map[ir.BlockID]*loopHeader),
		expanded: make(map[ir.BlockID]bool),
		visited:  make(map[ir.BlockID]bool, len(order)),
	}
	for i, id := range order {
		r.rpoIndex[id] = i
	}
	r.findLoops()
	stmts := r.region(order[0], noStop, loopCtx{})
	stmts = collapseFors(stmts)
	stmts = collapseSwitches(stmts)
	return stmts, r.warnings
}

// collapseFors rewrites an init-assignment immediately followed by a
// while loop whose body ends with `v = v op k` into a single for-loop with
// the step inlined as a compound assignment (§4.6's "for (i=0; i<3; i++)"
// shape, S2). Applied recursively to every nested body.
func collapseFors(stmts []*ir.Stmt) []*ir.Stmt {
	out := make([]*ir.Stmt, 0, len(stmts))
	for i := 0; i < len(stmts); i++ {
		s := stmts[i]
		recurseCollapse(s)
		if s.Kind == ir.StmtAssign && s.Target != nil && s.Target.Kind == ir.ExprIdent && i+1 < len(stmts) {
			next := stmts[i+1]
			if next.Kind == ir.StmtWhile {
				if step, body, ok := extractStep(s.Target.Ident, next.Then); ok {
					out = append(out, ir.For(ir.Assign(s.Target, s.Source), next.Cond, step, body))
					i++
					continue
				}
			}
		}
		out = append(out, s)
	}
	return out
}

func recurseCollapse(s *ir.Stmt) {
	s.Then = collapseFors(s.Then)
	s.Else = collapseFors(s.Else)
	s.Body = collapseFors(s.Body)
	s.TryBody = collapseFors(s.TryBody)
	s.CatchBody = collapseFors(s.CatchBody)
	s.FinallyBody = collapseFors(s.FinallyBody)
	for i := range s.Cases {
		s.Cases[i].Body = collapseFors(s.Cases[i].Body)
	}
}

// extractStep recognizes body's last statement as `v = v op k` and, if so,
// returns it rewritten as a compound-assignment step plus the body with
// that trailing statement removed.
func extractStep(varName string, body []*ir.Stmt) (*ir.Stmt, []*ir.Stmt, bool) {
	if len(body) == 0 {
		return nil, nil, false
	}
	last := body[len(body)-1]
	if last.Kind != ir.StmtAssign || last.Target == nil || last.Target.Kind != ir.ExprIdent || last.Target.Ident != varName {
		return nil, nil, false
	}
	src := last.Source
	if src == nil || src.Kind != ir.ExprBinary || src.Lhs == nil || src.Lhs.Kind != ir.ExprIdent || src.Lhs.Ident != varName {
		return nil, nil, false
	}
	step := ir.CompoundAssign(ir.Ident(varName), src.Op, src.Rhs)
	return step, body[:len(body)-1], true
}

// collapseSwitches rewrites a chain of "if (x == c1) {...} else if (x ==
// c2) {...} else {...}" into a single switch statement when every test in
// the chain compares the same subject identifier against a literal (§4.6
// pattern 8). This is deliberately conservative: it only fires on chains
// of two or more equality arms against one fixed identifier, and leaves
// anything else — a mixed subject, a non-equality test, a single if — as
// plain if/else. Applied recursively to every nested body.
func collapseSwitches(stmts []*ir.Stmt) []*ir.Stmt {
	out := make([]*ir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		recurseCollapseSwitches(s)
		if s.Kind == ir.StmtIf {
			if sw, ok := equalityChainToSwitch(s); ok {
				out = append(out, sw)
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func recurseCollapseSwitches(s *ir.Stmt) {
	s.Then = collapseSwitches(s.Then)
	s.Else = collapseSwitches(s.Else)
	s.Body = collapseSwitches(s.Body)
	s.TryBody = collapseSwitches(s.TryBody)
	s.CatchBody = collapseSwitches(s.CatchBody)
	s.FinallyBody = collapseSwitches(s.FinallyBody)
	for i := range s.Cases {
		s.Cases[i].Body = collapseSwitches(s.Cases[i].Body)
	}
}

// equalityTest recognizes cond as `ident == literal` (either operand
// order) and returns the identifier side and the literal side.
func equalityTest(cond *ir.Expr) (subject, value *ir.Expr, ok bool) {
	if cond == nil || cond.Kind != ir.ExprBinary || cond.Op != "==" {
		return nil, nil, false
	}
	switch {
	case cond.Lhs.Kind == ir.ExprIdent && isLiteral(cond.Rhs):
		return cond.Lhs, cond.Rhs, true
	case cond.Rhs.Kind == ir.ExprIdent && isLiteral(cond.Lhs):
		return cond.Rhs, cond.Lhs, true
	}
	return nil, nil, false
}

func isLiteral(e *ir.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ir.ExprLiteralInt, ir.ExprLiteralBytes, ir.ExprLiteralBool, ir.ExprLiteralNull:
		return true
	}
	return false
}

// equalityChainToSwitch walks head's else-if chain while every test
// compares the same subject identifier against a literal, collecting one
// case per arm. The chain stops at the first else-if that fails the
// pattern (different subject, non-equality test, or not an if at all);
// whatever is left over becomes the switch's default body verbatim.
func equalityChainToSwitch(head *ir.Stmt) (*ir.Stmt, bool) {
	subject, value, ok := equalityTest(head.Cond)
	if !ok {
		return nil, false
	}
	cases := []ir.CaseClause{{Value: value, Body: head.Then}}
	tailElse := head.Else
	for len(tailElse) == 1 && tailElse[0].Kind == ir.StmtIf {
		next := tailElse[0]
		nextSubject, nextValue, ok := equalityTest(next.Cond)
		if !ok || nextSubject.Ident != subject.Ident {
			break
		}
		cases = append(cases, ir.CaseClause{Value: nextValue, Body: next.Then})
		tailElse = next.Else
	}
	if len(cases) < 2 {
		return nil, false
	}
	if len(tailElse) > 0 {
		cases = append(cases, ir.CaseClause{Value: nil, Body: tailElse})
	}
	return ir.Switch(subject, cases), true
}

// findLoops locates every back edge (an edge whose target dominates its
// source) and computes each target's natural loop body.
func (r *recoverer) findLoops() {
	for _, id := range r.order {
		for _, e := range r.c.Successors(id) {
			if r.dom.Dominates(e.To, id) {
				hdr := r.headers[e.To]
				if hdr == nil {
					hdr = &loopHeader{body: map[ir.BlockID]bool{e.To: true}}
					r.headers[e.To] = hdr
				}
				hdr.latches = append(hdr.latches, id)
				r.growLoopBody(hdr, id)
			}
		}
	}
}

func (r *recoverer) growLoopBody(hdr *loopHeader, latch ir.BlockID) {
	if hdr.body[latch] {
		return
	}
	stack := []ir.BlockID{latch}
	hdr.body[latch] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range r.c.Predecessors(n) {
			if !hdr.body[e.From] {
				hdr.body[e.From] = true
				stack = append(stack, e.From)
			}
		}
	}
}

// findMerge approximates id's immediate post-dominator: the first block (in
// reverse post-order after id) not yet visited and not dominated by id,
// which skips an enclosing branch's already-recovered arm; the first point
// execution can reach without having passed only through id's own region.
// exclude lists id's own immediate successors (the branch's Then/Else, or a
// try's Try/Catch/Finally entries): without them, the fallback pass below
// would mistake one of those arms for its own merge point whenever an
// irreducible back edge gives it more than one predecessor.
func (r *recoverer) findMerge(id ir.BlockID, exclude ...ir.BlockID) (ir.BlockID, bool) {
	idx, ok := r.rpoIndex[id]
	if !ok {
		return 0, false
	}
	for i := idx + 1; i < len(r.order); i++ {
		cand := r.order[i]
		if r.visited[cand] {
			continue
		}
		if !r.dom.Dominates(id, cand) {
			return cand, true
		}
	}
	// id dominates every remaining reachable block: this happens whenever
	// id is the sole gateway to the rest of the function (most commonly,
	// id is the entry block's own branch), and it means the check above
	// can never escape id's dominance to find a join point. Fall back to
	// the first block whose immediate dominator is id itself and which
	// has more than one predecessor — the direct reconvergence of id's
	// own arms.
	for i := idx + 1; i < len(r.order); i++ {
		cand := r.order[i]
		if r.dom.IDom[cand] != id || len(r.c.Predecessors(cand)) < 2 {
			continue
		}
		if containsBlockID(exclude, cand) {
			continue
		}
		return cand, true
	}
	return 0, false
}

func containsBlockID(ids []ir.BlockID, target ir.BlockID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func (r *recoverer) offsetOf(id ir.BlockID) uint32 {
	if b, ok := r.c.Blocks[id]; ok {
		return b.StartOffset
	}
	return 0
}

func cloneStmts(b *ir.BasicBlock) []*ir.Stmt {
	return append([]*ir.Stmt(nil), b.Statements...)
}

// resolveEdge turns a jump to target into the right statement when it
// doesn't continue the current linear region: Continue/Break inside an
// active loop, nothing when it reaches stop (the caller's continuation),
// or a Goto/Label pair otherwise.
func (r *recoverer) resolveEdge(out []*ir.Stmt, target, stop ir.BlockID, ctx loopCtx) ([]*ir.Stmt, ir.BlockID, bool) {
	// A loop body is always recovered with stop == its own header, so the
	// body's natural tail edge back to the header satisfies both this
	// check and the continue check below. Testing stop first means that
	// edge falls off the end of the body silently, the way falling off
	// the end of any other region does; only a genuinely early jump back
	// to the header (not the body's last edge) becomes a continue.
	if target == stop {
		return out, 0, true
	}
	if ctx.active && target == ctx.header {
		return append(out, ir.Continue()), 0, true
	}
	if ctx.active && ctx.hasExit && target == ctx.exit {
		return append(out, ir.Break()), 0, true
	}
	if r.visited[target] {
		r.warnings = r.warnings.Append(warning.New(warning.StructuredRecoveryFallback, map[string]any{"label": fmt.Sprintf("%04x", r.offsetOf(target))}))
		return append(out, ir.Goto(r.offsetOf(target))), 0, true
	}
	return out, target, false
}

// tryDoWhile recognizes the posttest loop shape of §4.6 pattern 4: a loop
// header whose own terminator is not a branch (so the pretest handling in
// region's isHeader check never fires, and loopHead is recorded instead),
// walked straight through — no intervening branch — to a latch block
// whose conditional branch closes the loop by jumping back to loopHead.
// Only this direct, straight-line case is recognized; a body with its own
// nested branching before the tail test resets loopHead's tracking scope
// (each nested if/else spawns its own region call) and falls back to the
// existing continue/break/goto handling instead.
func (r *recoverer) tryDoWhile(loopHead ir.BlockID, t ir.Terminator, ctx loopCtx) (*ir.Expr, ir.BlockID, bool) {
	if ctx.active || loopHead == noStop || r.expanded[loopHead] {
		return nil, 0, false
	}
	switch loopHead {
	case t.Then:
		return t.Cond, t.Else, true
	case t.Else:
		return ir.Unary("!", t.Cond), t.Then, true
	}
	return nil, 0, false
}

// region structures the blocks reachable by walking forward from start,
// stopping at stop (exclusive, not emitted) or at a terminator with no
// natural continuation.
func (r *recoverer) region(start, stop ir.BlockID, ctx loopCtx) []*ir.Stmt {
	var out []*ir.Stmt
	id := start
	loopHead := noStop
	for {
		if id == stop {
			return out
		}
		if r.visited[id] {
			out = append(out, ir.Label(r.offsetOf(id)), ir.Goto(r.offsetOf(id)))
			return out
		}
		r.visited[id] = true
		b, ok := r.c.Blocks[id]
		if !ok {
			return out
		}
		out = append(out, cloneStmts(b)...)

		if hdr, isHeader := r.headers[id]; isHeader && !r.expanded[id] {
			if b.Terminator.Kind == ir.TermBranch {
				r.expanded[id] = true
				cond := b.Terminator.Cond
				bodyStart, exit := b.Terminator.Then, b.Terminator.Else
				if !hdr.body[bodyStart] {
					bodyStart, exit = b.Terminator.Else, b.Terminator.Then
					cond = ir.Unary("!", cond)
				}
				body := r.region(bodyStart, id, loopCtx{active: true, header: id, exit: exit, hasExit: true})
				out = append(out, ir.While(cond, body))
				id = exit
				continue
			}
			// No test at the header: remember it as a posttest-loop
			// candidate. If the straight-line walk reaches a tail branch
			// back to this block before hitting anything else first,
			// tryDoWhile turns the accumulated body into a do-while.
			loopHead = id
		}

		switch b.Terminator.Kind {
		case ir.TermReturn:
			return out // the RET statement was already emitted into the block body

		case ir.TermAbort:
			return out // the ABORT/THROW statement was already emitted into the block body

		case ir.TermFallthrough:
			var done bool
			out, id, done = r.resolveEdge(out, b.Terminator.Target, stop, ctx)
			if done {
				return out
			}
			continue

		case ir.TermJump, ir.TermLeave:
			var done bool
			out, id, done = r.resolveEdge(out, b.Terminator.Target, stop, ctx)
			if done {
				return out
			}
			continue

		case ir.TermBranch:
			if cond, exit, ok := r.tryDoWhile(loopHead, b.Terminator, ctx); ok {
				r.expanded[loopHead] = true
				out = []*ir.Stmt{ir.DoWhile(cond, out)}
				id = exit
				continue
			}

			merge, hasMerge := r.findMerge(id, b.Terminator.Then, b.Terminator.Else)
			thenStop, elseStop := noStop, noStop
			if hasMerge {
				thenStop, elseStop = merge, merge
			}
			thenStmts := r.region(b.Terminator.Then, thenStop, ctx)
			elseStmts := r.region(b.Terminator.Else, elseStop, ctx)
			out = append(out, ir.If(b.Terminator.Cond, thenStmts, elseStmts))
			if hasMerge {
				id = merge
				continue
			}
			return out

		case ir.TermTryEnter:
			t := b.Terminator
			excl := []ir.BlockID{t.Try}
			if t.HasCatch {
				excl = append(excl, t.Catch)
			}
			if t.HasFinally {
				excl = append(excl, t.Finally)
			}
			merge, hasMerge := r.findMerge(id, excl...)
			stopAt := noStop
			if hasMerge {
				stopAt = merge
			}
			tryStmts := r.region(t.Try, stopAt, ctx)
			var catchStmts, finallyStmts []*ir.Stmt
			if t.HasCatch {
				catchStmts = r.region(t.Catch, stopAt, ctx)
			}
			if t.HasFinally {
				finallyStmts = r.region(t.Finally, stopAt, ctx)
			}
			catchVar := ""
			if t.HasCatch {
				catchVar = "exception"
			}
			out = append(out, ir.Try(tryStmts, catchStmts, catchVar, finallyStmts))
			if hasMerge {
				id = merge
				continue
			}
			return out

		default:
			return out
		}
	}
}

// sortedBlockIDs is a small helper kept for callers that want deterministic
// iteration over a loop's body set (e.g. diagnostics).
func sortedBlockIDs(set map[ir.BlockID]bool) []ir.BlockID {
	out := make([]ir.BlockID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
