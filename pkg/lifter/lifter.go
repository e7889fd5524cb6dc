// Package lifter implements the stack-based abstract interpreter that
// lifts a flat Instruction stream into the statement/basic-block IR
// (§4.4): an abstract evaluation stack plus a slot model, walked once in
// instruction order, with non-idempotent expressions bound to temporaries
// before being duplicated.
package lifter

import (
	"fmt"

	"github.com/nspcc-dev/neo-decompiler/pkg/cfg"
	"github.com/nspcc-dev/neo-decompiler/pkg/disasm"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
	"github.com/nspcc-dev/neo-decompiler/pkg/opcode"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// Options controls lifter behavior.
type Options struct {
	// Manifest optionally supplies ABI parameter names for slot-name
	// overrides within a claimed method's byte range (§4.4, §9 open
	// question a).
	Manifest *manifest.ContractManifest
	// MethodTokens resolves CALLT operands by index.
	MethodTokens []MethodTokenInfo
}

// MethodTokenInfo is the subset of a nef.MethodToken the lifter needs to
// render a CALLT call site.
type MethodTokenInfo struct {
	ContractLabel string // resolved native-contract label, or "" if unknown
	Method        string
	ParamCount    int
	HasReturn     bool
}

// Program is the lifter's output: the set of basic blocks ready for CFG
// construction, plus diagnostics accumulated during lifting.
type Program struct {
	Blocks   map[ir.BlockID]*ir.BasicBlock
	Entry    ir.BlockID
	Warnings warning.List
}

type slotModel struct {
	statics []*ir.Expr
	locals  []*ir.Expr
	args    []*ir.Expr
}

// lifter holds the mutable state threaded through one pass over an
// instruction stream.
type lifter struct {
	instrs     []disasm.Instruction
	leaderID   map[uint32]ir.BlockID
	blocks     map[ir.BlockID]*ir.BasicBlock
	stack      abstractStack
	slots      slotModel
	tempN      int
	recoveredN int
	warnings   warning.List
	opts       Options
}

// Lift walks instrs once and produces a Program. opts is optional in every
// field: a nil Manifest just means no ABI slot-name overrides, and a short
// MethodTokens slice degrades CALLT rendering to a synthetic name.
func Lift(instrs []disasm.Instruction, opts Options) (*Program, error) {
	if len(instrs) == 0 {
		return &Program{Blocks: map[ir.BlockID]*ir.BasicBlock{}, Entry: 0}, nil
	}
	leaders := cfg.FindLeaders(instrs)
	l := &lifter{
		instrs:   instrs,
		leaderID: make(map[uint32]ir.BlockID, len(leaders)),
		blocks:   make(map[ir.BlockID]*ir.BasicBlock, len(leaders)),
		opts:     opts,
	}
	for i, off := range leaders {
		l.leaderID[off] = ir.BlockID(i)
	}
	l.run()
	return &Program{Blocks: l.blocks, Entry: 0, Warnings: l.warnings}, nil
}

func (l *lifter) warn(k warning.Kind, fields map[string]any) {
	l.warnings = l.warnings.Append(warning.New(k, fields))
}

func (l *lifter) newTemp() string {
	name := fmt.Sprintf("t%d", l.tempN)
	l.tempN++
	return name
}

// newRecovered synthesizes a recovered_N placeholder for a pop against an
// empty abstract stack and records the warning (§4.4 stack underflow
// recovery). It never fails the lift.
func (l *lifter) newRecovered(offset uint32) *ir.Expr {
	name := fmt.Sprintf("recovered_%d", l.recoveredN)
	l.recoveredN++
	l.warn(warning.StackUnderflow, map[string]any{"offset": offset})
	return ir.Ident(name)
}

func (l *lifter) blockAt(offset uint32) (ir.BlockID, bool) {
	id, ok := l.leaderID[offset]
	return id, ok
}

func (l *lifter) getOrCreateBlock(id ir.BlockID, startOffset uint32) *ir.BasicBlock {
	b, ok := l.blocks[id]
	if !ok {
		b = &ir.BasicBlock{ID: id, StartOffset: startOffset}
		l.blocks[id] = b
	}
	return b
}

// terminatorUnset reports whether b's Terminator is still the Go zero
// value. A genuine Fallthrough(0) edge into block 0 (the entry) can never
// occur — nothing precedes the entry block in program order — so treating
// the zero value as "unset" is safe.
func terminatorUnset(b *ir.BasicBlock) bool {
	return b.Terminator.Kind == ir.TermFallthrough && b.Terminator.Target == 0
}

func (l *lifter) run() {
	var cur *ir.BasicBlock

	emit := func(s *ir.Stmt) {
		cur.Statements = append(cur.Statements, s)
	}

	pop := func(offset uint32) *ir.Expr {
		if e, ok := l.stack.pop(); ok {
			return e
		}
		return l.newRecovered(offset)
	}

	bindIfNonIdempotent := func(e *ir.Expr) *ir.Expr {
		if e.IsIdempotent() {
			return e
		}
		name := l.newTemp()
		emit(ir.Assign(ir.Ident(name), e))
		return ir.Ident(name)
	}

	for idx, ins := range l.instrs {
		if id, ok := l.blockAt(ins.Offset); ok && (cur == nil || cur.ID != id) {
			if cur != nil {
				cur.EndOffset = ins.Offset
				if terminatorUnset(cur) {
					cur.Terminator = ir.Fallthrough(id)
				}
			}
			cur = l.getOrCreateBlock(id, ins.Offset)
		}

		info := ins.Op.Info()
		name := info.Mnemonic
		var next uint32
		if idx+1 < len(l.instrs) {
			next = l.instrs[idx+1].Offset
		}

		switch {
		case name == "":
			emit(ir.Raw(fmt.Sprintf("%04x: UNKNOWN(0x%02x) (not yet translated)", ins.Offset, byte(ins.Op))))

		case name == "NOP":
			// no-op.

		case isPush(name):
			l.stack.push(pushLiteral(name, ins))

		case isStackShuffle(name):
			l.liftStackOp(name, ins, pop, bindIfNonIdempotent)

		case isCallArith(name):
			l.liftCallArith(name, ins, pop)

		case isBinaryArith(name):
			b := pop(ins.Offset)
			a := pop(ins.Offset)
			l.stack.push(ir.Binary(binaryOperator(name), a, b))

		case isUnaryArith(name):
			a := pop(ins.Offset)
			l.stack.push(unaryExpr(name, a))

		case isSlotOp(name):
			l.liftSlotOp(name, ins, pop, emit)

		case name == "SYSCALL":
			l.liftSyscall(ins, pop, emit)

		case name == "CALLT":
			l.liftCallT(ins, pop, emit)

		case name == "CALL" || name == "CALL_L":
			target, _ := jumpTargetOf(ins)
			l.stack.push(ir.Call(ir.CallDirect, fmt.Sprintf("sub_%04x", target), nil, nil))

		case name == "CALLA":
			target := pop(ins.Offset)
			l.stack.push(ir.Call(ir.CallComputed, "", target, nil))

		case isCollectionOp(name):
			l.liftCollectionOp(name, ins, pop, emit)

		case name == "ISNULL":
			a := pop(ins.Offset)
			l.stack.push(ir.Cast("isnull", a))

		case name == "ISTYPE":
			a := pop(ins.Offset)
			l.stack.push(ir.Cast(stackItemTypeName(ins), a))

		case name == "CONVERT":
			a := pop(ins.Offset)
			l.stack.push(ir.Cast(stackItemTypeName(ins), a))

		case name == "THROW":
			v := pop(ins.Offset)
			emit(ir.Throw(v))
			cur.Terminator = ir.AbortTerm()

		case name == "RET":
			var v *ir.Expr
			if l.stack.len() > 0 {
				v, _ = l.stack.pop()
			}
			emit(ir.Return(v))
			cur.Terminator = ir.ReturnTerm(v)

		case name == "ABORT":
			emit(ir.Abort(nil))
			cur.Terminator = ir.AbortTerm()

		case name == "ABORTMSG":
			msg := operandMessage(ins)
			emit(ir.Abort(msg))
			cur.Terminator = ir.AbortTerm()

		case name == "ASSERT":
			cond := pop(ins.Offset)
			emit(ir.ExprStatement(ir.Call(ir.CallDirect, "assert", nil, []*ir.Expr{cond})))

		case name == "ASSERTMSG":
			cond := pop(ins.Offset)
			msg := operandMessage(ins)
			args := []*ir.Expr{cond}
			if msg != nil {
				args = append(args, msg)
			}
			emit(ir.ExprStatement(ir.Call(ir.CallDirect, "assert", nil, args)))

		case name == "JMP" || name == "JMP_L":
			target, _ := jumpTargetOf(ins)
			if tid, ok := l.blockAt(target); ok {
				cur.Terminator = ir.Jump(tid)
			}

		case isConditionalJump(name):
			cond := conditionExpr(name, pop, ins.Offset)
			target, _ := jumpTargetOf(ins)
			thenID, _ := l.blockAt(target)
			elseID, _ := l.blockAt(next)
			cur.Terminator = ir.Branch(cond, thenID, elseID)

		case name == "TRY" || name == "TRY_L":
			l.liftTry(cur, ins, next)

		case name == "ENDTRY" || name == "ENDTRY_L":
			target, _ := jumpTargetOf(ins)
			if tid, ok := l.blockAt(target); ok {
				cur.Terminator = ir.Leave(tid)
			}

		case name == "ENDFINALLY":
			if tid, ok := l.blockAt(next); ok {
				cur.Terminator = ir.Leave(tid)
			}

		default:
			emit(ir.Raw(fmt.Sprintf("%04x: %s (not yet translated)", ins.Offset, name)))
		}

		cur.EndOffset = ins.Offset + uint32(ins.Size)
	}
	if cur != nil && terminatorUnset(cur) {
		// Script fell off the end without an explicit RET: close it as a
		// bare return so downstream CFG/structure passes see a terminator.
		cur.Terminator = ir.ReturnTerm(nil)
	}
}

func operandMessage(ins disasm.Instruction) *ir.Expr {
	if ins.Operand == nil || ins.Operand.Bytes == nil {
		return nil
	}
	return ir.BytesLit(ins.Operand.Bytes)
}

func jumpTargetOf(ins disasm.Instruction) (uint32, bool) {
	if ins.Operand == nil {
		return 0, false
	}
	var rel int64
	switch ins.Operand.Kind {
	case opcode.OperandJumpOffset8:
		rel = int64(ins.Operand.JumpShort)
	case opcode.OperandJumpOffset32:
		rel = int64(ins.Operand.JumpLong)
	default:
		return 0, false
	}
	t := int64(ins.Offset) + rel
	if t < 0 {
		return 0, false
	}
	return uint32(t), true
}

func stackItemTypeName(ins disasm.Instruction) string {
	if ins.Operand == nil {
		return "Any"
	}
	if n, ok := stackItemTypeNames[ins.Operand.StackType]; ok {
		return n
	}
	return "Any"
}

var stackItemTypeNames = map[uint8]string{
	0x00: "Any", 0x10: "Pointer", 0x20: "Boolean", 0x21: "Integer",
	0x28: "ByteString", 0x30: "Buffer", 0x40: "Array", 0x41: "Struct",
	0x48: "Map", 0x60: "InteropInterface",
}

func (l *lifter) liftTry(cur *ir.BasicBlock, ins disasm.Instruction, next uint32) {
	tryID, _ := l.blockAt(next)
	var catchID, finallyID ir.BlockID
	hasCatch, hasFinally := false, false
	if ins.Operand != nil {
		if ins.Operand.TryCatch != 0 {
			if cid, ok := l.blockAt(uint32(int64(ins.Offset) + int64(ins.Operand.TryCatch))); ok {
				catchID, hasCatch = cid, true
			}
		}
		if ins.Operand.TryFinally != 0 {
			if fid, ok := l.blockAt(uint32(int64(ins.Offset) + int64(ins.Operand.TryFinally))); ok {
				finallyID, hasFinally = fid, true
			}
		}
	}
	cur.Terminator = ir.TryEnter(tryID, catchID, finallyID, hasCatch, hasFinally)
}
