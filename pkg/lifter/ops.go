package lifter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-decompiler/pkg/disasm"
	"github.com/nspcc-dev/neo-decompiler/pkg/ir"
	"github.com/nspcc-dev/neo-decompiler/pkg/manifest"
	"github.com/nspcc-dev/neo-decompiler/pkg/syscalls"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// -- push / constants --------------------------------------------------

func isPush(name string) bool {
	switch name {
	case "PUSHT", "PUSHF", "PUSHA", "PUSHNULL", "PUSHM1",
		"PUSHINT8", "PUSHINT16", "PUSHINT32", "PUSHINT64", "PUSHINT128", "PUSHINT256",
		"PUSHDATA1", "PUSHDATA2", "PUSHDATA4":
		return true
	}
	if strings.HasPrefix(name, "PUSH") {
		if _, err := strconv.Atoi(strings.TrimPrefix(name, "PUSH")); err == nil {
			return true
		}
	}
	return false
}

func pushLiteral(name string, ins disasm.Instruction) *ir.Expr {
	switch name {
	case "PUSHT":
		return ir.BoolLit(true)
	case "PUSHF":
		return ir.BoolLit(false)
	case "PUSHNULL":
		return ir.NullLit()
	case "PUSHM1":
		return ir.IntLit(-1)
	case "PUSHA":
		target, _ := jumpTargetOf(ins)
		return ir.Ident(fmt.Sprintf("&sub_%04x", target))
	case "PUSHINT8", "PUSHINT16", "PUSHINT32", "PUSHINT64", "PUSHINT128", "PUSHINT256":
		if ins.Operand != nil && ins.Operand.Int != nil {
			return ir.BigIntLit(ins.Operand.Int)
		}
		return ir.IntLit(0)
	case "PUSHDATA1", "PUSHDATA2", "PUSHDATA4":
		if ins.Operand != nil {
			return ir.BytesLit(ins.Operand.Bytes)
		}
		return ir.BytesLit(nil)
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(name, "PUSH")); err == nil {
		return ir.IntLit(int64(n))
	}
	return ir.IntLit(0)
}

// -- stack manipulation --------------------------------------------------

func isStackShuffle(name string) bool {
	switch name {
	case "DEPTH", "DROP", "NIP", "XDROP", "CLEAR", "DUP", "OVER",
		"PICK", "TUCK", "SWAP", "ROT", "ROLL", "REVERSE3", "REVERSE4", "REVERSEN":
		return true
	}
	return false
}

// smallInt extracts a static index/count from an expression produced by a
// preceding PUSH; non-literal operands (the count was computed at runtime)
// degrade to 0, the top of stack, since this is a static analysis with no
// constant-propagation pass of its own.
func smallInt(e *ir.Expr) int {
	if e != nil && e.Kind == ir.ExprLiteralInt && e.Int != nil {
		return int(e.Int.Int64())
	}
	return 0
}

func (l *lifter) liftStackOp(name string, ins disasm.Instruction, pop func(uint32) *ir.Expr, bind func(*ir.Expr) *ir.Expr) {
	off := ins.Offset
	// rebind binds v and, when v was read from the stack at depth d,
	// replaces that entry with the bound reference so both copies share it.
	rebind := func(d int, v *ir.Expr, fromStack bool) *ir.Expr {
		v = bind(v)
		if fromStack {
			l.stack.items[l.stack.len()-1-d] = v
		}
		return v
	}
	switch name {
	case "DEPTH":
		l.stack.push(ir.IntLit(int64(l.stack.len())))
	case "DROP":
		pop(off)
	case "NIP":
		top := pop(off)
		pop(off)
		l.stack.push(top)
	case "XDROP":
		n := smallInt(pop(off))
		l.stack.removeAt(n)
	case "CLEAR":
		l.stack.clear()
	case "DUP":
		top, ok := l.stack.peek(0)
		if !ok {
			top = l.newRecovered(off)
		}
		l.stack.push(rebind(0, top, ok))
	case "OVER":
		v, ok := l.stack.peek(1)
		if !ok {
			v = l.newRecovered(off)
		}
		l.stack.push(rebind(1, v, ok))
	case "PICK":
		n := smallInt(pop(off))
		v, ok := l.stack.peek(n)
		if !ok {
			v = l.newRecovered(off)
		}
		l.stack.push(rebind(n, v, ok))
	case "TUCK":
		top := pop(off)
		second := pop(off)
		dup := bind(top)
		l.stack.push(dup)
		l.stack.push(second)
		l.stack.push(dup)
	case "SWAP":
		a := pop(off)
		b := pop(off)
		l.stack.push(a)
		l.stack.push(b)
	case "ROT":
		c := pop(off)
		b := pop(off)
		a := pop(off)
		l.stack.push(b)
		l.stack.push(c)
		l.stack.push(a)
	case "ROLL":
		n := smallInt(pop(off))
		v, ok := l.stack.removeAt(n)
		if !ok {
			v = l.newRecovered(off)
		}
		l.stack.push(v)
	case "REVERSE3":
		l.reverseTop(3, off)
	case "REVERSE4":
		l.reverseTop(4, off)
	case "REVERSEN":
		n := smallInt(pop(off))
		l.reverseTop(n, off)
	}
}

func (l *lifter) reverseTop(n int, offset uint32) {
	if n <= 1 {
		return
	}
	items := make([]*ir.Expr, 0, n)
	for i := 0; i < n; i++ {
		v, ok := l.stack.pop()
		if !ok {
			v = l.newRecovered(offset)
		}
		items = append(items, v)
	}
	for _, v := range items {
		l.stack.push(v)
	}
}

// -- arithmetic / bitwise / comparison -----------------------------------

var binaryOps = map[string]string{
	"ADD": "+", "SUB": "-", "MUL": "*", "DIV": "/", "MOD": "%",
	"SHL": "<<", "SHR": ">>", "AND": "&", "OR": "|", "XOR": "^",
	"BOOLAND": "&&", "BOOLOR": "||",
	"NUMEQUAL": "==", "EQUAL": "==", "NUMNOTEQUAL": "!=", "NOTEQUAL": "!=",
	"LT": "<", "LE": "<=", "GT": ">", "GE": ">=", "CAT": "+",
}

func isBinaryArith(name string) bool { _, ok := binaryOps[name]; return ok }
func binaryOperator(name string) string { return binaryOps[name] }

func isUnaryArith(name string) bool {
	switch name {
	case "NOT", "NEGATE", "INVERT", "NZ", "SIGN", "ABS", "INC", "DEC", "SQRT":
		return true
	}
	return false
}

func unaryExpr(name string, a *ir.Expr) *ir.Expr {
	switch name {
	case "NOT":
		return ir.Unary("!", a)
	case "NEGATE":
		return ir.Unary("-", a)
	case "INVERT":
		return ir.Unary("~", a)
	case "NZ":
		return ir.Binary("!=", a, ir.IntLit(0))
	case "INC":
		return ir.Binary("+", a, ir.IntLit(1))
	case "DEC":
		return ir.Binary("-", a, ir.IntLit(1))
	case "SIGN":
		return ir.Call(ir.CallDirect, "sign", nil, []*ir.Expr{a})
	case "ABS":
		return ir.Call(ir.CallDirect, "abs", nil, []*ir.Expr{a})
	case "SQRT":
		return ir.Call(ir.CallDirect, "sqrt", nil, []*ir.Expr{a})
	}
	return a
}

// WITHIN/MIN/MAX/POW/MODMUL/MODPOW have no natural infix/prefix spelling;
// they render as ordinary function calls.
var callArithArity = map[string]int{"MIN": 2, "MAX": 2, "POW": 2, "MODMUL": 3, "MODPOW": 3, "WITHIN": 3}

func isCallArith(name string) bool { _, ok := callArithArity[name]; return ok }

func (l *lifter) liftCallArith(name string, ins disasm.Instruction, pop func(uint32) *ir.Expr) {
	n := callArithArity[name]
	args := make([]*ir.Expr, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = pop(ins.Offset)
	}
	l.stack.push(ir.Call(ir.CallDirect, strings.ToLower(name), nil, args))
}

// -- slots ----------------------------------------------------------------

func isSlotOp(name string) bool {
	if name == "INITSSLOT" || name == "INITSLOT" {
		return true
	}
	for _, p := range []string{"LDSFLD", "STSFLD", "LDLOC", "STLOC", "LDARG", "STARG"} {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func slotPrefixAndKind(name string) (prefix, kind string) {
	switch {
	case strings.HasPrefix(name, "LDSFLD"):
		return "LDSFLD", "static"
	case strings.HasPrefix(name, "STSFLD"):
		return "STSFLD", "static"
	case strings.HasPrefix(name, "LDLOC"):
		return "LDLOC", "local"
	case strings.HasPrefix(name, "STLOC"):
		return "STLOC", "local"
	case strings.HasPrefix(name, "LDARG"):
		return "LDARG", "arg"
	case strings.HasPrefix(name, "STARG"):
		return "STARG", "arg"
	}
	return "", ""
}

func decodeSlotName(name string, ins disasm.Instruction) (kind string, idx int) {
	prefix, kind := slotPrefixAndKind(name)
	suffix := strings.TrimPrefix(name, prefix)
	if suffix == "" {
		if ins.Operand != nil {
			return kind, int(ins.Operand.Slot)
		}
		return kind, 0
	}
	n, _ := strconv.Atoi(suffix)
	return kind, n
}

func (l *lifter) slotSlice(kind string) *[]*ir.Expr {
	switch kind {
	case "static":
		return &l.slots.statics
	case "local":
		return &l.slots.locals
	default:
		return &l.slots.args
	}
}

// slotIdent names a slot identifier, overriding arg_N with the contract's
// ABI parameter name when a Manifest is available and the access falls
// within that method's claimed byte range, and warning once a slot index
// is accessed past the capacity declared by INITSLOT/INITSSLOT.
func (l *lifter) slotIdent(kind string, idx int, offset uint32) string {
	slice := l.slotSlice(kind)
	if idx >= len(*slice) {
		l.warn(warning.SlotCapacityExceeded, map[string]any{"offset": offset, "index": idx, "kind": kind})
	}
	if kind == "arg" && l.opts.Manifest != nil {
		if meth, ok := methodContaining(l.opts.Manifest, offset); ok && idx < len(meth.Parameters) {
			return meth.Parameters[idx].Name
		}
	}
	return fmt.Sprintf("%s_%d", kind, idx)
}

// methodContaining finds the ABI method whose declared offset is the
// greatest one not exceeding offset — the method whose body currently
// contains the instruction (§9 open question a).
func methodContaining(m *manifest.ContractManifest, offset uint32) (manifest.Method, bool) {
	var best manifest.Method
	found := false
	for _, meth := range m.ABI.Methods {
		s := uint32(meth.Offset)
		if s <= offset && (!found || s > uint32(best.Offset)) {
			best, found = meth, true
		}
	}
	return best, found
}

func (l *lifter) liftSlotOp(name string, ins disasm.Instruction, pop func(uint32) *ir.Expr, emit func(*ir.Stmt)) {
	switch name {
	case "INITSSLOT":
		n := 0
		if ins.Operand != nil {
			n = int(ins.Operand.Count)
		}
		l.slots.statics = make([]*ir.Expr, n)
		return
	case "INITSLOT":
		nl, na := 0, 0
		if ins.Operand != nil {
			nl, na = int(ins.Operand.InitLocal), int(ins.Operand.InitArg)
		}
		l.slots.locals = make([]*ir.Expr, nl)
		l.slots.args = make([]*ir.Expr, na)
		return
	}

	kind, idx := decodeSlotName(name, ins)
	ident := l.slotIdent(kind, idx, ins.Offset)

	if strings.HasPrefix(name, "LD") {
		l.stack.push(ir.Ident(ident))
		return
	}
	v := pop(ins.Offset)
	emit(ir.Assign(ir.Ident(ident), v))
}

// -- calls ------------------------------------------------------------

func (l *lifter) liftSyscall(ins disasm.Instruction, pop func(uint32) *ir.Expr, emit func(*ir.Stmt)) {
	var hash uint32
	if ins.Operand != nil {
		hash = ins.Operand.SyscallHash
	}
	info, ok := syscalls.Lookup(hash)
	name := fmt.Sprintf("syscall_%08x", hash)
	paramCount := 0
	returnsValue := true
	if ok {
		name = info.Name
		paramCount = info.ParamCount
		returnsValue = info.ReturnsValue
	} else {
		l.warn(warning.NativeMethodNotFound, map[string]any{"offset": ins.Offset})
	}
	args := make([]*ir.Expr, paramCount)
	for i := paramCount - 1; i >= 0; i-- {
		args[i] = pop(ins.Offset)
	}
	call := ir.Call(ir.CallSyscall, name, nil, args)
	if returnsValue {
		l.stack.push(call)
		return
	}
	emit(ir.ExprStatement(call))
}

func (l *lifter) liftCallT(ins disasm.Instruction, pop func(uint32) *ir.Expr, emit func(*ir.Stmt)) {
	idx := 0
	if ins.Operand != nil {
		idx = int(ins.Operand.Token)
	}
	var tok MethodTokenInfo
	if idx >= 0 && idx < len(l.opts.MethodTokens) {
		tok = l.opts.MethodTokens[idx]
	}
	name := tok.Method
	if name == "" {
		name = fmt.Sprintf("token_%d", idx)
	}
	if tok.ContractLabel != "" {
		name = tok.ContractLabel + "." + name
	}
	args := make([]*ir.Expr, tok.ParamCount)
	for i := tok.ParamCount - 1; i >= 0; i-- {
		args[i] = pop(ins.Offset)
	}
	call := ir.Call(ir.CallMethodToken, name, nil, args)
	if tok.HasReturn {
		l.stack.push(call)
		return
	}
	emit(ir.ExprStatement(call))
}

// -- collections / conditional jumps --------------------------------------

func isCollectionOp(name string) bool {
	switch name {
	case "NEWBUFFER", "MEMCPY", "SUBSTR", "LEFT", "RIGHT",
		"PACKMAP", "PACKSTRUCT", "PACK", "UNPACK",
		"NEWARRAY0", "NEWARRAY", "NEWARRAY_T", "NEWSTRUCT0", "NEWSTRUCT", "NEWMAP",
		"SIZE", "HASKEY", "KEYS", "VALUES", "PICKITEM", "APPEND", "SETITEM",
		"REVERSEITEMS", "REMOVE", "CLEARITEMS", "POPITEM", "SLICE":
		return true
	}
	return false
}

func (l *lifter) liftCollectionOp(name string, ins disasm.Instruction, pop func(uint32) *ir.Expr, emit func(*ir.Stmt)) {
	off := ins.Offset
	call := func(fn string, argc int) *ir.Expr {
		args := make([]*ir.Expr, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = pop(off)
		}
		return ir.Call(ir.CallDirect, fn, nil, args)
	}
	switch name {
	case "NEWBUFFER":
		l.stack.push(call("new_buffer", 1))
	case "MEMCPY":
		emit(ir.ExprStatement(call("memcpy", 5)))
	case "SUBSTR":
		l.stack.push(call("substr", 3))
	case "LEFT":
		l.stack.push(call("left", 2))
	case "RIGHT":
		l.stack.push(call("right", 2))
	case "PACKMAP":
		l.stack.push(call("pack_map", 1))
	case "PACKSTRUCT":
		l.stack.push(call("pack_struct", 1))
	case "PACK":
		l.stack.push(call("pack", 1))
	case "UNPACK":
		l.stack.push(call("unpack", 1))
	case "NEWARRAY0":
		l.stack.push(ir.Call(ir.CallDirect, "new_array", nil, nil))
	case "NEWARRAY":
		l.stack.push(call("new_array", 1))
	case "NEWARRAY_T":
		l.stack.push(call("new_array_"+stackItemTypeName(ins), 1))
	case "NEWSTRUCT0":
		l.stack.push(ir.Call(ir.CallDirect, "new_struct", nil, nil))
	case "NEWSTRUCT":
		l.stack.push(call("new_struct", 1))
	case "NEWMAP":
		l.stack.push(ir.Call(ir.CallDirect, "new_map", nil, nil))
	case "SIZE":
		a := pop(off)
		l.stack.push(ir.Call(ir.CallDirect, "len", nil, []*ir.Expr{a}))
	case "HASKEY":
		key := pop(off)
		target := pop(off)
		l.stack.push(ir.HasKey(target, key))
	case "KEYS":
		l.stack.push(call("keys", 1))
	case "VALUES":
		l.stack.push(call("values", 1))
	case "PICKITEM":
		key := pop(off)
		target := pop(off)
		l.stack.push(ir.Index(target, key))
	case "APPEND":
		emit(ir.ExprStatement(call("append", 2)))
	case "SETITEM":
		v := pop(off)
		key := pop(off)
		target := pop(off)
		emit(ir.Assign(ir.Index(target, key), v))
	case "REVERSEITEMS":
		emit(ir.ExprStatement(call("reverse_items", 1)))
	case "REMOVE":
		emit(ir.ExprStatement(call("remove", 2)))
	case "CLEARITEMS":
		emit(ir.ExprStatement(call("clear_items", 1)))
	case "POPITEM":
		l.stack.push(call("pop_item", 1))
	case "SLICE":
		l.stack.push(call("slice", 3))
	}
}

func isConditionalJump(name string) bool {
	switch name {
	case "JMPIF", "JMPIF_L", "JMPIFNOT", "JMPIFNOT_L",
		"JMPEQ", "JMPEQ_L", "JMPNE", "JMPNE_L",
		"JMPGT", "JMPGT_L", "JMPGE", "JMPGE_L",
		"JMPLT", "JMPLT_L", "JMPLE", "JMPLE_L":
		return true
	}
	return false
}

func conditionExpr(name string, pop func(uint32) *ir.Expr, offset uint32) *ir.Expr {
	base := strings.TrimSuffix(name, "_L")
	switch base {
	case "JMPIF":
		return pop(offset)
	case "JMPIFNOT":
		return ir.Unary("!", pop(offset))
	case "JMPEQ":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary("==", a, b)
	case "JMPNE":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary("!=", a, b)
	case "JMPGT":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary(">", a, b)
	case "JMPGE":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary(">=", a, b)
	case "JMPLT":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary("<", a, b)
	case "JMPLE":
		b := pop(offset)
		a := pop(offset)
		return ir.Binary("<=", a, b)
	}
	return pop(offset)
}
