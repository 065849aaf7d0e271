package cpu

import (
	"errors"
	"strconv"

	"github.com/ezrec/lc2k/translate"
)

var f = translate.From

// itoa formats message numbers without locale digit grouping.
func itoa[T ~int | ~int32 | ~uint32](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

var (
	// Cpu errors
	ErrHalted      = errors.New(f("machine halted"))
	ErrMemoryRange = errors.New(f("memory address out of range"))
	ErrMachineWord = errors.New(f("malformed machine word"))

	// Instruction encode/decode errors
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrOffsetRange     = errors.New(f("offset does not fit in 16 bits"))

	// Assembler errors
	ErrLineTooLong    = errors.New(f("line too long"))
	ErrLabelDuplicate = errors.New(f("label duplicated"))
	ErrLabelInvalid   = errors.New(f("label invalid"))
	ErrOpcodeInvalid  = errors.New(f("opcode unrecognized"))
	ErrOperandMissing = errors.New(f("operand missing"))
	ErrValueRange     = errors.New(f("value does not fit in 32 bits"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v undefined", string(el))
}

// ErrOpcode is returned when a word cannot be decoded as an instruction.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %v in word %v", itoa(uint32(eo)>>OPCODE_SHIFT), itoa(uint32(eo)))
}

func (eo ErrOpcode) Unwrap() error {
	return ErrOpcodeUnknown
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrMemory reports the address of an out of range memory access.
type ErrMemory int

func (err ErrMemory) Error() string {
	return f("address %v out of range", itoa(err))
}

func (err ErrMemory) Unwrap() error {
	return ErrMemoryRange
}

// ErrWord reports the address of a machine code line that could not be parsed.
type ErrWord struct {
	Address int
	Line    string
}

func (err ErrWord) Error() string {
	return f("error in reading address %v: '%v'", itoa(err.Address), err.Line)
}

func (err ErrWord) Unwrap() error {
	return ErrMachineWord
}

// ErrFile reports a file that could not be opened or created.
type ErrFile struct {
	Path string
	Err  error
}

func (err ErrFile) Error() string {
	return f("can't open file %v: %v", err.Path, err.Err)
}

func (err ErrFile) Unwrap() error {
	return err.Err
}
