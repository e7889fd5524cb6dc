// Package disasm implements the linear-sweep disassembler (§4.3):
// decoding a flat VM script into an ordered Instruction sequence, in
// either tolerant (unknown opcodes become a synthetic Unknown instruction
// plus a warning) or strict (first unknown opcode is a fatal error) mode.
package disasm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-decompiler/pkg/opcode"
	"github.com/nspcc-dev/neo-decompiler/pkg/warning"
)

// MaxOperandPayload bounds PUSHDATA*-style length-prefixed operands
// (§5 memory bounds).
const MaxOperandPayload = 1 * 1024 * 1024 // 1 MiB

// UnknownOpcodeError is returned in strict mode on the first unrecognized
// opcode byte.
type UnknownOpcodeError struct {
	Offset uint32
	Byte   byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("disasm: unknown opcode 0x%02x at offset %d", e.Byte, e.Offset)
}

// TruncatedError is returned when an operand would read past the end of
// the script, or an offset computation would overflow.
type TruncatedError struct {
	Offset uint32
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("disasm: truncated instruction at offset %d", e.Offset)
}

// ErrOperandTooLarge is returned when a PUSHDATA*-style length prefix
// exceeds MaxOperandPayload or extends past the script end.
var ErrOperandTooLarge = errors.New("disasm: operand exceeds maximum payload size")

// Operand carries the decoded operand value for one Instruction. Exactly
// one field group is populated, selected by Kind (mirrors opcode.OperandKind).
type Operand struct {
	Kind opcode.OperandKind

	Int       *big.Int // Int8/16/32/64/128/256
	Bytes     []byte    // PushData1/2/4, Message
	JumpShort int8      // JumpOffset8
	JumpLong  int32     // JumpOffset32
	Slot      uint8
	SyscallHash uint32
	StackType uint8
	TryCatch  int32
	TryFinally int32
	InitLocal uint8
	InitArg   uint8
	Token     uint16
	Count     uint8
}

// Instruction is one decoded VM instruction (§3 data model).
type Instruction struct {
	Offset  uint32
	Op      opcode.OpCode
	Operand *Operand // nil for OperandNone
	Size    uint8
}

// Options controls disassembly strictness.
type Options struct {
	// FailOnUnknown switches to strict mode (§4.3).
	FailOnUnknown bool
}

// Result is the disassembler's output: the instruction stream indexed by
// offset, plus any warnings raised in tolerant mode.
type Result struct {
	Instructions []Instruction
	ByOffset     map[uint32]int // offset -> index into Instructions
	Warnings     warning.List
}

// Disassemble performs one linear sweep over script, covering [0,len)
// with no gaps in tolerant mode.
func Disassemble(script []byte, opts Options) (*Result, error) {
	res := &Result{ByOffset: make(map[uint32]int)}
	n := len(script)
	offset := 0
	for offset < n {
		if offset < 0 || offset > n {
			return nil, &TruncatedError{Offset: uint32(offset)}
		}
		b := script[offset]
		op := opcode.OpCode(b)
		info := op.Info()

		if info.Mnemonic == "" {
			if opts.FailOnUnknown {
				return nil, &UnknownOpcodeError{Offset: uint32(offset), Byte: b}
			}
			res.Warnings = res.Warnings.Append(warning.New(warning.UnknownOpcode, map[string]any{
				"offset": offset, "byte": b,
			}))
			res.ByOffset[uint32(offset)] = len(res.Instructions)
			res.Instructions = append(res.Instructions, Instruction{Offset: uint32(offset), Op: op, Size: 1})
			offset++
			continue
		}

		operand, size, err := decodeOperand(script, offset, info.Operand)
		if err != nil {
			return nil, err
		}

		res.ByOffset[uint32(offset)] = len(res.Instructions)
		res.Instructions = append(res.Instructions, Instruction{
			Offset:  uint32(offset),
			Op:      op,
			Operand: operand,
			Size:    uint8(1 + size),
		})

		next := offset + 1 + size
		if next <= offset {
			return nil, &TruncatedError{Offset: uint32(offset)}
		}
		offset = next
	}
	return res, nil
}

func decodeOperand(script []byte, opStart int, kind opcode.OperandKind) (*Operand, int, error) {
	pos := opStart + 1
	n := len(script)
	need := func(sz int) error {
		if sz < 0 || pos+sz > n {
			return &TruncatedError{Offset: uint32(opStart)}
		}
		return nil
	}

	switch kind {
	case opcode.OperandNone:
		return nil, 0, nil
	case opcode.OperandInt8:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, Int: big.NewInt(int64(int8(script[pos])))}, 1, nil
	case opcode.OperandInt16:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		v := int16(le16(script[pos:]))
		return &Operand{Kind: kind, Int: big.NewInt(int64(v))}, 2, nil
	case opcode.OperandInt32:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		v := int32(le32(script[pos:]))
		return &Operand{Kind: kind, Int: big.NewInt(int64(v))}, 4, nil
	case opcode.OperandInt64:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		v := int64(le64(script[pos:]))
		return &Operand{Kind: kind, Int: big.NewInt(v)}, 8, nil
	case opcode.OperandInt128:
		if err := need(16); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, Int: leBigInt(script[pos : pos+16])}, 16, nil
	case opcode.OperandInt256:
		if err := need(32); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, Int: leBigInt(script[pos : pos+32])}, 32, nil
	case opcode.OperandPushData1:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		length := int(script[pos])
		return readPushData(script, opStart, pos, 1, length, kind)
	case opcode.OperandPushData2:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		length := int(le16(script[pos:]))
		return readPushData(script, opStart, pos, 2, length, kind)
	case opcode.OperandPushData4:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		length := int(le32(script[pos:]))
		if length < 0 || length > MaxOperandPayload {
			return nil, 0, ErrOperandTooLarge
		}
		return readPushData(script, opStart, pos, 4, length, kind)
	case opcode.OperandMessage:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		length := int(script[pos])
		return readPushData(script, opStart, pos, 1, length, kind)
	case opcode.OperandJumpOffset8:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, JumpShort: int8(script[pos])}, 1, nil
	case opcode.OperandJumpOffset32:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, JumpLong: int32(le32(script[pos:]))}, 4, nil
	case opcode.OperandSlot, opcode.OperandStackItemType, opcode.OperandCount:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, Slot: script[pos], StackType: script[pos], Count: script[pos]}, 1, nil
	case opcode.OperandSyscallHash:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, SyscallHash: le32(script[pos:])}, 4, nil
	case opcode.OperandTryShort:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, TryCatch: int32(int8(script[pos])), TryFinally: int32(int8(script[pos+1]))}, 2, nil
	case opcode.OperandTryLong:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, TryCatch: int32(le32(script[pos:])), TryFinally: int32(le32(script[pos+4:]))}, 8, nil
	case opcode.OperandInitSlot:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, InitLocal: script[pos], InitArg: script[pos+1]}, 2, nil
	case opcode.OperandMethodToken:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return &Operand{Kind: kind, Token: le16(script[pos:])}, 2, nil
	default:
		return nil, 0, fmt.Errorf("disasm: unsupported operand kind %d", kind)
	}
}

func readPushData(script []byte, opStart, lenFieldPos, lenFieldSize, length int, kind opcode.OperandKind) (*Operand, int, error) {
	if length < 0 || length > MaxOperandPayload {
		return nil, 0, ErrOperandTooLarge
	}
	dataStart := lenFieldPos + lenFieldSize
	if dataStart+length > len(script) {
		return nil, 0, &TruncatedError{Offset: uint32(opStart)}
	}
	data := make([]byte, length)
	copy(data, script[dataStart:dataStart+length])
	return &Operand{Kind: kind, Bytes: data}, lenFieldSize + length, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
func leBigInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, j := 0, len(b)-1; i < len(b); i, j = i+1, j-1 {
		rev[i] = b[j]
	}
	v := new(big.Int).SetBytes(rev)
	// Two's-complement sign fixup: if the high bit of the original
	// little-endian last byte is set, the value is negative.
	if len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, full)
	}
	return v
}
