// Package cfg builds and queries the control-flow graph (§4.5): basic
// blocks keyed by dense integer ids, a typed edge set, and reachability.
package cfg

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/disasm"
	"github.com/nspcc-dev/neo-decompiler/pkg/opcode"
)

// FindLeaders identifies every offset that begins a new basic block: the
// first instruction, every jump/branch/try target, and the instruction
// following any control-transfer terminator.
func FindLeaders(instrs []disasm.Instruction) []uint32 {
	if len(instrs) == 0 {
		return nil
	}
	set := map[uint32]bool{instrs[0].Offset: true}

	for i, ins := range instrs {
		info := ins.Op.Info()
		end := ins.Offset + uint32(ins.Size)

		switch info.Term {
		case opcode.TermJump, opcode.TermBranch:
			if target, ok := jumpTarget(ins); ok {
				set[target] = true
			}
			if i+1 < len(instrs) {
				set[end] = true
			}
		case opcode.TermTryEnter:
			if ins.Operand != nil {
				catch := int64(ins.Offset) + int64(ins.Operand.TryCatch)
				finally := int64(ins.Offset) + int64(ins.Operand.TryFinally)
				if ins.Operand.TryCatch != 0 && catch >= 0 {
					set[uint32(catch)] = true
				}
				if ins.Operand.TryFinally != 0 && finally >= 0 {
					set[uint32(finally)] = true
				}
			}
			if i+1 < len(instrs) {
				set[end] = true
			}
		case opcode.TermLeave:
			if target, ok := jumpTarget(ins); ok {
				set[target] = true
			}
			if i+1 < len(instrs) {
				set[end] = true
			}
		case opcode.TermReturn, opcode.TermAbort, opcode.TermThrow:
			if i+1 < len(instrs) {
				set[end] = true
			}
		}
	}

	out := make([]uint32, 0, len(set))
	for off := range set {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// jumpTarget computes the absolute offset a jump/branch/leave instruction
// targets, given its relative operand.
func jumpTarget(ins disasm.Instruction) (uint32, bool) {
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
	target := int64(ins.Offset) + rel
	if target < 0 {
		return 0, false
	}
	return uint32(target), true
}
