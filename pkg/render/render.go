// Package render turns a structured statement tree (pkg/structure's
// output) into deterministic text (§4.9 supplement): Pseudocode,
// HighLevel, and CSharp share one AST-walking core and differ only in a
// small token table. SSA-renamed trees are a separate, optional artifact
// (lazily computed per §9's "Lazy SSA" note) and are never fed through
// this package — pseudocode callers never pay for SSA construction.
package render

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
)

// Mode selects a token table for the shared statement/expression printer.
type Mode int

// Render modes.
const (
	Pseudocode Mode = iota
	HighLevel
	CSharp
)

type tokens struct {
	semi       string
	braces     bool
	varKeyword string
	boolTrue   string
	boolFalse  string
}

func tokensFor(m Mode) tokens {
	switch m {
	case Pseudocode:
		return tokens{semi: "", braces: false, varKeyword: "", boolTrue: "True", boolFalse: "False"}
	case CSharp:
		return tokens{semi: ";", braces: true, varKeyword: "var ", boolTrue: "true", boolFalse: "false"}
	default: // HighLevel
		return tokens{semi: ";", braces: true, varKeyword: "var ", boolTrue: "true", boolFalse: "false"}
	}
}

type printer struct {
	tok      tokens
	mode     Mode
	declared map[string]bool
	sb       strings.Builder
}

// Render prints stmts as a complete function body in the given mode.
func Render(stmts []*ir.Stmt, mode Mode) string {
	p := &printer{tok: tokensFor(mode), mode: mode, declared: make(map[string]bool)}
	p.block(stmts, 0)
	return p.sb.String()
}

func (p *printer) indent(depth int) {
	p.sb.WriteString(strings.Repeat("    ", depth))
}

func (p *printer) block(stmts []*ir.Stmt, depth int) {
	for _, s := range stmts {
		p.stmt(s, depth)
	}
}

func (p *printer) openBrace() string {
	if p.tok.braces {
		return " {\n"
	}
	return ":\n"
}

func (p *printer) closeBrace(depth int) {
	if p.tok.braces {
		p.indent(depth)
		p.sb.WriteString("}\n")
	}
}

func (p *printer) stmt(s *ir.Stmt, depth int) {
	p.indent(depth)
	switch s.Kind {
	case ir.StmtAssign:
		p.assign(s)
	case ir.StmtCompoundAssign:
		fmt.Fprintf(&p.sb, "%s %s= %s%s\n", p.expr(s.Target), s.Op, p.expr(s.Source), p.tok.semi)
	case ir.StmtExpr:
		fmt.Fprintf(&p.sb, "%s%s\n", p.expr(s.Expr), p.tok.semi)
	case ir.StmtReturn:
		if s.Expr == nil {
			fmt.Fprintf(&p.sb, "return%s\n", p.tok.semi)
		} else {
			fmt.Fprintf(&p.sb, "return %s%s\n", p.expr(s.Expr), p.tok.semi)
		}
	case ir.StmtAbort:
		if s.Expr == nil {
			fmt.Fprintf(&p.sb, "abort()%s\n", p.tok.semi)
		} else {
			fmt.Fprintf(&p.sb, "abort(%s)%s\n", p.expr(s.Expr), p.tok.semi)
		}
	case ir.StmtThrow:
		fmt.Fprintf(&p.sb, "throw %s%s\n", p.expr(s.Expr), p.tok.semi)
	case ir.StmtIf:
		p.ifStmt(s, depth)
	case ir.StmtWhile:
		fmt.Fprintf(&p.sb, "while (%s)%s", p.expr(s.Cond), p.openBrace())
		p.block(s.Then, depth+1)
		p.closeBrace(depth)
	case ir.StmtDoWhile:
		p.sb.WriteString("do")
		p.sb.WriteString(p.openBrace())
		p.block(s.Then, depth+1)
		p.closeBrace(depth)
		p.indent(depth)
		fmt.Fprintf(&p.sb, "while (%s)%s\n", p.expr(s.Cond), p.tok.semi)
	case ir.StmtFor:
		p.forStmt(s, depth)
	case ir.StmtBreak:
		fmt.Fprintf(&p.sb, "break%s\n", p.tok.semi)
	case ir.StmtContinue:
		fmt.Fprintf(&p.sb, "continue%s\n", p.tok.semi)
	case ir.StmtTry:
		p.tryStmt(s, depth)
	case ir.StmtSwitch:
		p.switchStmt(s, depth)
	case ir.StmtLabel:
		fmt.Fprintf(&p.sb, "label_%04x:\n", s.Offset)
	case ir.StmtGoto:
		fmt.Fprintf(&p.sb, "goto label_%04x%s\n", s.Offset, p.tok.semi)
	case ir.StmtRaw:
		fmt.Fprintf(&p.sb, "// %s\n", s.Comment)
	}
}

func (p *printer) assign(s *ir.Stmt) {
	prefix := ""
	if s.Target != nil && s.Target.Kind == ir.ExprIdent && !p.declared[s.Target.Ident] {
		p.declared[s.Target.Ident] = true
		prefix = p.tok.varKeyword
	}
	fmt.Fprintf(&p.sb, "%s%s = %s%s\n", prefix, p.expr(s.Target), p.expr(s.Source), p.tok.semi)
}

func (p *printer) ifStmt(s *ir.Stmt, depth int) {
	fmt.Fprintf(&p.sb, "if (%s)%s", p.expr(s.Cond), p.openBrace())
	p.block(s.Then, depth+1)
	p.closeBrace(depth)
	if len(s.Else) == 0 {
		return
	}
	p.indent(depth)
	if len(s.Else) == 1 && s.Else[0].Kind == ir.StmtIf {
		p.sb.WriteString("else ")
		// Re-enter ifStmt without re-indenting ("else if" collapse).
		saved := p.sb.Len()
		_ = saved
		s2 := s.Else[0]
		fmt.Fprintf(&p.sb, "if (%s)%s", p.expr(s2.Cond), p.openBrace())
		p.block(s2.Then, depth+1)
		p.closeBrace(depth)
		if len(s2.Else) > 0 {
			p.indent(depth)
			p.sb.WriteString("else")
			p.sb.WriteString(p.openBrace())
			p.block(s2.Else, depth+1)
			p.closeBrace(depth)
		}
		return
	}
	p.sb.WriteString("else")
	p.sb.WriteString(p.openBrace())
	p.block(s.Else, depth+1)
	p.closeBrace(depth)
}

func (p *printer) forStmt(s *ir.Stmt, depth int) {
	initStr, stepStr := "", ""
	if s.Init != nil {
		initStr = strings.TrimRight(p.forClause(s.Init), "\n")
	}
	if s.Step != nil {
		stepStr = strings.TrimRight(p.forClause(s.Step), "\n")
	}
	fmt.Fprintf(&p.sb, "for (%s; %s; %s)%s", initStr, p.expr(s.Cond), stepStr, p.openBrace())
	p.block(s.Body, depth+1)
	p.closeBrace(depth)
}

// forClause renders an Init/Step statement without its trailing semicolon
// or newline, for embedding inside a for(...) header.
func (p *printer) forClause(s *ir.Stmt) string {
	switch s.Kind {
	case ir.StmtAssign:
		prefix := ""
		if s.Target != nil && s.Target.Kind == ir.ExprIdent && !p.declared[s.Target.Ident] {
			p.declared[s.Target.Ident] = true
			prefix = p.tok.varKeyword
		}
		return fmt.Sprintf("%s%s = %s", prefix, p.expr(s.Target), p.expr(s.Source))
	case ir.StmtCompoundAssign:
		return fmt.Sprintf("%s %s= %s", p.expr(s.Target), s.Op, p.expr(s.Source))
	default:
		return ""
	}
}

func (p *printer) tryStmt(s *ir.Stmt, depth int) {
	p.sb.WriteString("try")
	p.sb.WriteString(p.openBrace())
	p.block(s.TryBody, depth+1)
	p.closeBrace(depth)
	if s.CatchBody != nil || s.CatchVar != "" {
		p.indent(depth)
		if s.CatchVar != "" {
			fmt.Fprintf(&p.sb, "catch (%s)%s", s.CatchVar, p.openBrace())
		} else {
			p.sb.WriteString("catch")
			p.sb.WriteString(p.openBrace())
		}
		p.block(s.CatchBody, depth+1)
		p.closeBrace(depth)
	}
	if s.FinallyBody != nil {
		p.indent(depth)
		p.sb.WriteString("finally")
		p.sb.WriteString(p.openBrace())
		p.block(s.FinallyBody, depth+1)
		p.closeBrace(depth)
	}
}

func (p *printer) switchStmt(s *ir.Stmt, depth int) {
	fmt.Fprintf(&p.sb, "switch (%s)%s", p.expr(s.Subject), p.openBrace())
	for _, c := range s.Cases {
		p.indent(depth + 1)
		if c.Value == nil {
			p.sb.WriteString("default:\n")
		} else {
			fmt.Fprintf(&p.sb, "case %s:\n", p.expr(c.Value))
		}
		p.block(c.Body, depth+2)
	}
	p.closeBrace(depth)
}

func (p *printer) expr(e *ir.Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ir.ExprLiteralInt:
		return formatInt(e.Int)
	case ir.ExprLiteralBytes:
		return formatBytes(e.Bytes)
	case ir.ExprLiteralBool:
		if e.Bool {
			return p.tok.boolTrue
		}
		return p.tok.boolFalse
	case ir.ExprLiteralNull:
		if p.mode == CSharp {
			return "null"
		}
		return "null"
	case ir.ExprIdent:
		return identDisplayName(e.Ident)
	case ir.ExprBinary:
		return fmt.Sprintf("%s %s %s", p.expr(e.Lhs), e.Op, p.expr(e.Rhs))
	case ir.ExprUnary:
		return fmt.Sprintf("%s%s", e.Op, p.expr(e.Lhs))
	case ir.ExprCall:
		return p.call(e)
	case ir.ExprIndex:
		return fmt.Sprintf("%s[%s]", p.expr(e.Target), p.expr(e.Index))
	case ir.ExprCast:
		return fmt.Sprintf("(%s)%s", e.Type, p.expr(e.Target))
	case ir.ExprHasKey:
		return fmt.Sprintf("has_key(%s, %s)", p.expr(e.Target), p.expr(e.Index))
	default:
		return ""
	}
}

func (p *printer) call(e *ir.Expr) string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = p.expr(a)
	}
	joined := strings.Join(args, ", ")
	if e.CallKind == ir.CallComputed {
		return fmt.Sprintf("call(%s)", p.expr(e.CalleeExpr))
	}
	return fmt.Sprintf("%s(%s)", e.Callee, joined)
}

func formatInt(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatBytes(b []byte) string {
	if isPrintableASCII(b) {
		return fmt.Sprintf("%q", string(b))
	}
	return "0x" + fmt.Sprintf("%x", b)
}

func isPrintableASCII(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// identDisplayName hides an SSA version suffix ("local_0.2" -> "local_0")
// should a renamed tree ever reach this printer; the primary pseudocode
// path never produces dotted names since it renders the pre-SSA tree.
func identDisplayName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
