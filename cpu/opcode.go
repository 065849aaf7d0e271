package cpu

import (
	"fmt"
)

// Instruction word field positions.
const (
	OPCODE_SHIFT = 22     // Opcode field, bits 22..24.
	REG_A_SHIFT  = 19     // First source register, bits 19..21.
	REG_B_SHIFT  = 16     // Second source register, bits 16..18.
	REG_MASK     = 0x7    // Register field mask.
	OFFSET_MASK  = 0xffff // Offset field, bits 0..15.

	OFFSET_MIN = -32768 // Smallest encodable offset.
	OFFSET_MAX = 32767  // Largest encodable offset.
)

// CodeOp is an opcode.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_ADD  = CodeOp(0) // add
	OP_NOR  = CodeOp(1) // nor
	OP_LW   = CodeOp(2) // lw
	OP_SW   = CodeOp(3) // sw
	OP_BEQ  = CodeOp(4) // beq
	OP_JALR = CodeOp(5) // jalr
	OP_HALT = CodeOp(6) // halt
	OP_NOOP = CodeOp(7) // noop
)

// CodeClass is the operand layout of an opcode.
type CodeClass int

//go:generate go tool stringer -linecomment -type=CodeClass
const (
	CLASS_R = CodeClass(0) // reg-reg-reg
	CLASS_I = CodeClass(1) // reg-reg-offset
	CLASS_J = CodeClass(2) // reg-reg
	CLASS_O = CodeClass(3) // none
)

// Class returns the operand layout of the opcode.
func (op CodeOp) Class() CodeClass {
	switch op {
	case OP_ADD, OP_NOR:
		return CLASS_R
	case OP_LW, OP_SW, OP_BEQ:
		return CLASS_I
	case OP_JALR:
		return CLASS_J
	}
	return CLASS_O
}

// Valid returns true if the opcode is one of the eight defined opcodes.
func (op CodeOp) Valid() bool {
	return op >= OP_ADD && op <= OP_NOOP
}

// Reg is a register index.
type Reg int

// Valid returns true if the register index is in [0,7].
func (r Reg) Valid() bool {
	return r >= 0 && r <= REG_MASK
}

// Code is a single 32-bit instruction word.
type Code uint32

// Instruction is a decoded instruction word. Fields not used by the
// opcode class are zero.
type Instruction struct {
	Op     CodeOp
	RegA   Reg
	RegB   Reg
	Dest   Reg
	Offset int32
}

// makeOp creates an instruction word with the opcode and both source registers.
func makeOp(op CodeOp, a, b Reg) (code Code, err error) {
	if !a.Valid() || !b.Valid() {
		err = ErrRegisterInvalid
		return
	}

	code = Code(uint32(op)<<OPCODE_SHIFT | uint32(a)<<REG_A_SHIFT | uint32(b)<<REG_B_SHIFT)
	return
}

// MakeCodeR creates a register-register-register instruction (add, nor).
func MakeCodeR(op CodeOp, a, b, dest Reg) (code Code, err error) {
	if op.Class() != CLASS_R || !op.Valid() {
		err = ErrOpcodeInvalid
		return
	}
	if !dest.Valid() {
		err = ErrRegisterInvalid
		return
	}

	code, err = makeOp(op, a, b)
	if err != nil {
		return
	}

	code |= Code(dest)
	return
}

// MakeCodeI creates a register-register-offset instruction (lw, sw, beq).
func MakeCodeI(op CodeOp, a, b Reg, offset int32) (code Code, err error) {
	if op.Class() != CLASS_I {
		err = ErrOpcodeInvalid
		return
	}
	if offset < OFFSET_MIN || offset > OFFSET_MAX {
		err = ErrOffsetRange
		return
	}

	code, err = makeOp(op, a, b)
	if err != nil {
		return
	}

	code |= Code(uint32(offset) & OFFSET_MASK)
	return
}

// MakeCodeJ creates a jalr instruction.
func MakeCodeJ(a, b Reg) (code Code, err error) {
	return makeOp(OP_JALR, a, b)
}

// MakeCodeO creates an operand-less instruction (halt, noop).
func MakeCodeO(op CodeOp) (code Code, err error) {
	if op.Class() != CLASS_O || !op.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	code = Code(uint32(op) << OPCODE_SHIFT)
	return
}

// Encode packs the instruction into a word.
func (ins Instruction) Encode() (code Code, err error) {
	switch ins.Op.Class() {
	case CLASS_R:
		code, err = MakeCodeR(ins.Op, ins.RegA, ins.RegB, ins.Dest)
	case CLASS_I:
		code, err = MakeCodeI(ins.Op, ins.RegA, ins.RegB, ins.Offset)
	case CLASS_J:
		code, err = MakeCodeJ(ins.RegA, ins.RegB)
	default:
		code, err = MakeCodeO(ins.Op)
	}

	return
}

// Op returns the opcode field. Words with bits set above the opcode field
// return an opcode that is not Valid().
func (code Code) Op() CodeOp {
	return CodeOp(uint32(code) >> OPCODE_SHIFT)
}

// RDecode decodes the registers of an add or nor.
func (code Code) RDecode() (a, b, dest Reg) {
	a, b = code.JDecode()
	dest = Reg(uint32(code) & REG_MASK)
	return
}

// IDecode decodes the registers and sign-extended offset of a lw, sw or beq.
func (code Code) IDecode() (a, b Reg, offset int32) {
	a, b = code.JDecode()
	offset = int32(int16(uint32(code) & OFFSET_MASK))
	return
}

// JDecode decodes the two source registers.
func (code Code) JDecode() (a, b Reg) {
	word := uint32(code)
	a = Reg((word >> REG_A_SHIFT) & REG_MASK)
	b = Reg((word >> REG_B_SHIFT) & REG_MASK)
	return
}

// Decode unpacks the word into an Instruction.
func (code Code) Decode() (ins Instruction, err error) {
	ins.Op = code.Op()
	if !ins.Op.Valid() {
		err = ErrOpcode(code)
		return
	}

	switch ins.Op.Class() {
	case CLASS_R:
		ins.RegA, ins.RegB, ins.Dest = code.RDecode()
	case CLASS_I:
		ins.RegA, ins.RegB, ins.Offset = code.IDecode()
	case CLASS_J:
		ins.RegA, ins.RegB = code.JDecode()
	}

	return
}

// String returns the assembly language representation of this instruction.
func (ins Instruction) String() (out string) {
	switch ins.Op.Class() {
	case CLASS_R:
		out = fmt.Sprintf("%v %d %d %d", ins.Op, ins.RegA, ins.RegB, ins.Dest)
	case CLASS_I:
		out = fmt.Sprintf("%v %d %d %d", ins.Op, ins.RegA, ins.RegB, ins.Offset)
	case CLASS_J:
		out = fmt.Sprintf("%v %d %d", ins.Op, ins.RegA, ins.RegB)
	default:
		out = ins.Op.String()
	}

	return
}

// String returns the disassembly of the word, or the raw value if it does
// not decode.
func (code Code) String() string {
	ins, err := code.Decode()
	if err != nil {
		return fmt.Sprintf(".fill %d", int32(code))
	}
	return ins.String()
}
