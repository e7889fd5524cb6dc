// Package opcode defines the static Neo N3 VM opcode table: one row per
// byte value giving its mnemonic, operand encoding, and control-transfer
// classification. The table is a plain [256]OpInfo array indexed directly
// by opcode byte for O(1) lookup, hand-authored the way neo-go's own
// pkg/vm/opcode table is (its retrieved test file notes "nothing more to
// test here, really" — the table itself is definitional, not computed).
package opcode

import "fmt"

// OpCode identifies a single VM instruction byte.
type OpCode byte

// OperandKind classifies how an instruction's operand bytes are laid out
// following the opcode byte, matching the Operand tagged union of the
// decompiler's data model.
type OperandKind int

// Operand encodings.
const (
	OperandNone OperandKind = iota
	OperandInt8
	OperandInt16
	OperandInt32
	OperandInt64
	OperandInt128 // 16-byte little-endian bigint
	OperandInt256 // 32-byte little-endian bigint
	OperandPushData1
	OperandPushData2
	OperandPushData4
	OperandJumpOffset8
	OperandJumpOffset32
	OperandSlot
	OperandSyscallHash
	OperandStackItemType
	OperandTryShort
	OperandTryLong
	OperandInitSlot
	OperandMethodToken
	OperandCount
	OperandMessage
)

// Term classifies how an instruction affects control flow, used by the
// CFG builder to decide block leaders/terminators.
type Term int

// Control-transfer classifications.
const (
	TermNone Term = iota
	TermJump
	TermBranch
	TermReturn
	TermAbort
	TermThrow
	TermTryEnter
	TermLeave
)

// Info describes one opcode: its mnemonic, operand shape, and effect on
// control flow.
type Info struct {
	Mnemonic string
	Operand  OperandKind
	Term     Term
	IsCall   bool
}

var table [256]Info
var byName = map[string]OpCode{}

func def(b byte, name string, operand OperandKind, term Term, isCall bool) {
	table[b] = Info{Mnemonic: name, Operand: operand, Term: term, IsCall: isCall}
	byName[name] = OpCode(b)
}

func init() {
	// Constants.
	def(0x00, "PUSHINT8", OperandInt8, TermNone, false)
	def(0x01, "PUSHINT16", OperandInt16, TermNone, false)
	def(0x02, "PUSHINT32", OperandInt32, TermNone, false)
	def(0x03, "PUSHINT64", OperandInt64, TermNone, false)
	def(0x04, "PUSHINT128", OperandInt128, TermNone, false)
	def(0x05, "PUSHINT256", OperandInt256, TermNone, false)
	def(0x08, "PUSHT", OperandNone, TermNone, false)
	def(0x09, "PUSHF", OperandNone, TermNone, false)
	def(0x0A, "PUSHA", OperandJumpOffset32, TermNone, false)
	def(0x0B, "PUSHNULL", OperandNone, TermNone, false)
	def(0x0C, "PUSHDATA1", OperandPushData1, TermNone, false)
	def(0x0D, "PUSHDATA2", OperandPushData2, TermNone, false)
	def(0x0E, "PUSHDATA4", OperandPushData4, TermNone, false)
	def(0x0F, "PUSHM1", OperandNone, TermNone, false)
	for i := 0; i <= 16; i++ {
		def(byte(0x10+i), fmt.Sprintf("PUSH%d", i), OperandNone, TermNone, false)
	}
	def(0x21, "NOP", OperandNone, TermNone, false)

	// Control transfer.
	def(0x22, "JMP", OperandJumpOffset8, TermJump, false)
	def(0x23, "JMP_L", OperandJumpOffset32, TermJump, false)
	def(0x24, "JMPIF", OperandJumpOffset8, TermBranch, false)
	def(0x25, "JMPIF_L", OperandJumpOffset32, TermBranch, false)
	def(0x26, "JMPIFNOT", OperandJumpOffset8, TermBranch, false)
	def(0x27, "JMPIFNOT_L", OperandJumpOffset32, TermBranch, false)
	def(0x28, "JMPEQ", OperandJumpOffset8, TermBranch, false)
	def(0x29, "JMPEQ_L", OperandJumpOffset32, TermBranch, false)
	def(0x2A, "JMPNE", OperandJumpOffset8, TermBranch, false)
	def(0x2B, "JMPNE_L", OperandJumpOffset32, TermBranch, false)
	def(0x2C, "JMPGT", OperandJumpOffset8, TermBranch, false)
	def(0x2D, "JMPGT_L", OperandJumpOffset32, TermBranch, false)
	def(0x2E, "JMPGE", OperandJumpOffset8, TermBranch, false)
	def(0x2F, "JMPGE_L", OperandJumpOffset32, TermBranch, false)
	def(0x30, "JMPLT", OperandJumpOffset8, TermBranch, false)
	def(0x31, "JMPLT_L", OperandJumpOffset32, TermBranch, false)
	def(0x32, "JMPLE", OperandJumpOffset8, TermBranch, false)
	def(0x33, "JMPLE_L", OperandJumpOffset32, TermBranch, false)
	def(0x34, "CALL", OperandJumpOffset8, TermNone, true)
	def(0x35, "CALL_L", OperandJumpOffset32, TermNone, true)
	def(0x36, "CALLA", OperandNone, TermNone, true)
	def(0x37, "CALLT", OperandMethodToken, TermNone, true)
	def(0x38, "ABORT", OperandNone, TermAbort, false)
	def(0x39, "ASSERT", OperandNone, TermNone, false)
	def(0x3A, "THROW", OperandNone, TermThrow, false)
	def(0x3B, "TRY", OperandTryShort, TermTryEnter, false)
	def(0x3C, "TRY_L", OperandTryLong, TermTryEnter, false)
	def(0x3D, "ENDTRY", OperandJumpOffset8, TermLeave, false)
	def(0x3E, "ENDTRY_L", OperandJumpOffset32, TermLeave, false)
	def(0x3F, "ENDFINALLY", OperandNone, TermLeave, false)
	def(0x40, "RET", OperandNone, TermReturn, false)
	def(0x41, "SYSCALL", OperandSyscallHash, TermNone, true)

	// Stack manipulation.
	def(0x43, "DEPTH", OperandNone, TermNone, false)
	def(0x45, "DROP", OperandNone, TermNone, false)
	def(0x46, "NIP", OperandNone, TermNone, false)
	def(0x48, "XDROP", OperandNone, TermNone, false)
	def(0x49, "CLEAR", OperandNone, TermNone, false)
	def(0x4A, "DUP", OperandNone, TermNone, false)
	def(0x4B, "OVER", OperandNone, TermNone, false)
	def(0x4D, "PICK", OperandNone, TermNone, false)
	def(0x4E, "TUCK", OperandNone, TermNone, false)
	def(0x50, "SWAP", OperandNone, TermNone, false)
	def(0x51, "ROT", OperandNone, TermNone, false)
	def(0x52, "ROLL", OperandNone, TermNone, false)
	def(0x53, "REVERSE3", OperandNone, TermNone, false)
	def(0x54, "REVERSE4", OperandNone, TermNone, false)
	def(0x55, "REVERSEN", OperandNone, TermNone, false)

	// Slots.
	def(0x56, "INITSSLOT", OperandCount, TermNone, false)
	def(0x57, "INITSLOT", OperandInitSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x58+i), fmt.Sprintf("LDSFLD%d", i), OperandNone, TermNone, false)
	}
	def(0x5F, "LDSFLD", OperandSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x60+i), fmt.Sprintf("STSFLD%d", i), OperandNone, TermNone, false)
	}
	def(0x67, "STSFLD", OperandSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x68+i), fmt.Sprintf("LDLOC%d", i), OperandNone, TermNone, false)
	}
	def(0x6F, "LDLOC", OperandSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x70+i), fmt.Sprintf("STLOC%d", i), OperandNone, TermNone, false)
	}
	def(0x77, "STLOC", OperandSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x78+i), fmt.Sprintf("LDARG%d", i), OperandNone, TermNone, false)
	}
	def(0x7F, "LDARG", OperandSlot, TermNone, false)
	for i := 0; i <= 6; i++ {
		def(byte(0x80+i), fmt.Sprintf("STARG%d", i), OperandNone, TermNone, false)
	}
	def(0x87, "STARG", OperandSlot, TermNone, false)

	// Splice.
	def(0x88, "NEWBUFFER", OperandNone, TermNone, false)
	def(0x89, "MEMCPY", OperandNone, TermNone, false)
	def(0x8B, "CAT", OperandNone, TermNone, false)
	def(0x8C, "SUBSTR", OperandNone, TermNone, false)
	def(0x8D, "LEFT", OperandNone, TermNone, false)
	def(0x8E, "RIGHT", OperandNone, TermNone, false)

	// Bitwise logic.
	def(0x90, "INVERT", OperandNone, TermNone, false)
	def(0x91, "AND", OperandNone, TermNone, false)
	def(0x92, "OR", OperandNone, TermNone, false)
	def(0x93, "XOR", OperandNone, TermNone, false)
	def(0x97, "EQUAL", OperandNone, TermNone, false)
	def(0x98, "NOTEQUAL", OperandNone, TermNone, false)

	// Arithmetic.
	def(0x99, "SIGN", OperandNone, TermNone, false)
	def(0x9A, "ABS", OperandNone, TermNone, false)
	def(0x9B, "NEGATE", OperandNone, TermNone, false)
	def(0x9C, "INC", OperandNone, TermNone, false)
	def(0x9D, "DEC", OperandNone, TermNone, false)
	def(0x9E, "ADD", OperandNone, TermNone, false)
	def(0x9F, "SUB", OperandNone, TermNone, false)
	def(0xA0, "MUL", OperandNone, TermNone, false)
	def(0xA1, "DIV", OperandNone, TermNone, false)
	def(0xA2, "MOD", OperandNone, TermNone, false)
	def(0xA3, "POW", OperandNone, TermNone, false)
	def(0xA4, "SQRT", OperandNone, TermNone, false)
	def(0xA5, "MODMUL", OperandNone, TermNone, false)
	def(0xA6, "MODPOW", OperandNone, TermNone, false)
	def(0xA8, "SHL", OperandNone, TermNone, false)
	def(0xA9, "SHR", OperandNone, TermNone, false)
	def(0xAA, "NOT", OperandNone, TermNone, false)
	def(0xAB, "BOOLAND", OperandNone, TermNone, false)
	def(0xAC, "BOOLOR", OperandNone, TermNone, false)
	def(0xB1, "NZ", OperandNone, TermNone, false)
	def(0xB3, "NUMEQUAL", OperandNone, TermNone, false)
	def(0xB4, "NUMNOTEQUAL", OperandNone, TermNone, false)
	def(0xB5, "LT", OperandNone, TermNone, false)
	def(0xB6, "LE", OperandNone, TermNone, false)
	def(0xB7, "GT", OperandNone, TermNone, false)
	def(0xB8, "GE", OperandNone, TermNone, false)
	def(0xB9, "MIN", OperandNone, TermNone, false)
	def(0xBA, "MAX", OperandNone, TermNone, false)
	def(0xBB, "WITHIN", OperandNone, TermNone, false)

	// Compound-type.
	def(0xBE, "PACKMAP", OperandNone, TermNone, false)
	def(0xBF, "PACKSTRUCT", OperandNone, TermNone, false)
	def(0xC0, "PACK", OperandNone, TermNone, false)
	def(0xC1, "UNPACK", OperandNone, TermNone, false)
	def(0xC2, "NEWARRAY0", OperandNone, TermNone, false)
	def(0xC3, "NEWARRAY", OperandNone, TermNone, false)
	def(0xC4, "NEWARRAY_T", OperandStackItemType, TermNone, false)
	def(0xC5, "NEWSTRUCT0", OperandNone, TermNone, false)
	def(0xC6, "NEWSTRUCT", OperandNone, TermNone, false)
	def(0xC8, "NEWMAP", OperandNone, TermNone, false)
	def(0xCA, "SIZE", OperandNone, TermNone, false)
	def(0xCB, "HASKEY", OperandNone, TermNone, false)
	def(0xCC, "KEYS", OperandNone, TermNone, false)
	def(0xCD, "VALUES", OperandNone, TermNone, false)
	def(0xCE, "PICKITEM", OperandNone, TermNone, false)
	def(0xCF, "APPEND", OperandNone, TermNone, false)
	def(0xD0, "SETITEM", OperandNone, TermNone, false)
	def(0xD1, "REVERSEITEMS", OperandNone, TermNone, false)
	def(0xD2, "REMOVE", OperandNone, TermNone, false)
	def(0xD3, "CLEARITEMS", OperandNone, TermNone, false)
	def(0xD4, "POPITEM", OperandNone, TermNone, false)
	def(0xD5, "SLICE", OperandNone, TermNone, false)

	// Types.
	def(0xD8, "ISNULL", OperandNone, TermNone, false)
	def(0xD9, "ISTYPE", OperandStackItemType, TermNone, false)
	def(0xDB, "CONVERT", OperandStackItemType, TermNone, false)

	// Extensions (this dialect's message-bearing abort/assert; §3 Operand).
	def(0xE0, "ABORTMSG", OperandMessage, TermAbort, false)
	def(0xE1, "ASSERTMSG", OperandMessage, TermNone, false)
}

// Lookup returns the Info for b; unknown bytes return a zero Info with
// Mnemonic == "".
func Lookup(b byte) Info {
	return table[b]
}

// IsKnown reports whether op appears in the static table.
func IsKnown(b byte) bool {
	return table[b].Mnemonic != ""
}

// String renders the mnemonic, or "Opcode(N)" for bytes absent from the
// table (mirrors neo-go's opcode.Opcode.String stringer contract).
func (op OpCode) String() string {
	if info := table[byte(op)]; info.Mnemonic != "" {
		return info.Mnemonic
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Info returns this opcode's table entry.
func (op OpCode) Info() Info { return table[byte(op)] }

// FromString resolves a mnemonic to its OpCode, failing for unknown names.
func FromString(s string) (OpCode, error) {
	if op, ok := byName[s]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("opcode: unknown mnemonic %q", s)
}

// OperandLength returns the number of operand bytes that follow the opcode
// byte for a fixed-size encoding (0 for OperandNone), or -1 for
// variable-length encodings (PUSHDATA*, whose length depends on a
// runtime-read prefix).
func OperandLength(k OperandKind) int {
	switch k {
	case OperandNone:
		return 0
	case OperandInt8, OperandSlot, OperandStackItemType, OperandCount:
		return 1
	case OperandInt16:
		return 2
	case OperandInt32, OperandJumpOffset32, OperandSyscallHash:
		return 4
	case OperandInt64:
		return 8
	case OperandInt128:
		return 16
	case OperandInt256:
		return 32
	case OperandJumpOffset8:
		return 1
	case OperandTryShort:
		return 2
	case OperandTryLong:
		return 8
	case OperandInitSlot:
		return 2
	case OperandMethodToken:
		return 2
	case OperandPushData1, OperandPushData2, OperandPushData4, OperandMessage:
		return -1
	default:
		return -1
	}
}
