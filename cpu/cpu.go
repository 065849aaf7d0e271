package cpu

import (
	"fmt"
	"log"
	"strings"
)

const (
	REGISTER_COUNT = 8 // Number of machine registers
)

// Cpu is the simulation context for the machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       int32                 // Program counter; index into Memory.
	Register [REGISTER_COUNT]int32 // Register bank.
	Memory   *Memory               // Main memory.
	Halted   bool                  // Set once a halt has executed.
	Ticks    int                   // Executed instruction counter.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size int) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(size),
	}

	return
}

// Reset the CPU state.
// - Clears the registers and program counter.
// - Zeros the instruction counter.
// - Leaves memory untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load copies a machine code image into memory, and resets the CPU.
func (cpu *Cpu) Load(words []int32) (err error) {
	err = cpu.Memory.Load(words)
	if err != nil {
		return
	}

	cpu.Reset()

	return
}

// String returns the current machine state as a snapshot.
func (cpu *Cpu) String() string {
	var text strings.Builder

	text.WriteString(f("\n@@@\nstate:\n"))
	fmt.Fprintf(&text, "\tpc %d\n", cpu.Pc)
	text.WriteString(f("\tmemory:\n"))
	for n, word := range cpu.Memory.Populated() {
		fmt.Fprintf(&text, "\t\tmem[ %d ] %d\n", n, word)
	}
	text.WriteString(f("\tregisters:\n"))
	for n, reg := range cpu.Register {
		fmt.Fprintf(&text, "\t\treg[ %d ] %d\n", n, reg)
	}
	text.WriteString(f("end state\n"))

	return text.String()
}

// FetchCode fetches the instruction at the program counter, and advances
// the program counter past it.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	word, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}

	cpu.Pc++
	code = Code(uint32(word))

	return
}

// Tick executes a single instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)

	return
}

// Execute executes a single instruction word. The program counter must
// already point past the instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	ins, err := code.Decode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%d: %v", cpu.Pc-1, ins)
	}

	reg := &cpu.Register

	switch ins.Op {
	case OP_ADD:
		reg[ins.Dest] = reg[ins.RegA] + reg[ins.RegB]
	case OP_NOR:
		reg[ins.Dest] = ^(reg[ins.RegA] | reg[ins.RegB])
	case OP_LW:
		var value int32
		value, err = cpu.Memory.Read(reg[ins.RegA] + ins.Offset)
		if err != nil {
			return
		}
		reg[ins.RegB] = value
	case OP_SW:
		err = cpu.Memory.Write(reg[ins.RegA]+ins.Offset, reg[ins.RegB])
		if err != nil {
			return
		}
	case OP_BEQ:
		if reg[ins.RegA] == reg[ins.RegB] {
			cpu.Pc += ins.Offset
		}
	case OP_JALR:
		// Read register A first, so that jalr with RegA == RegB jumps to
		// the old value.
		target := reg[ins.RegA]
		reg[ins.RegB] = cpu.Pc
		cpu.Pc = target
	case OP_HALT:
		cpu.Halted = true
	case OP_NOOP:
		// pass
	}

	cpu.Ticks += 1

	return
}
