// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ezrec/lc2k/cpu"
)

// Emulator state. CPU + memory + optional program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Program listing, if assembled in-process.

	Trace    io.Writer // If set, receives the state trace.
	MaxTicks int       // If positive, limits the executed instructions.
}

// NewEmulator creates a new emulator with a full sized memory.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(cpu.MEMORY_SIZE),
	}

	return
}

// tracef writes to the trace, if any.
func (emu *Emulator) tracef(format string, args ...any) {
	if emu.Trace != nil {
		fmt.Fprintf(emu.Trace, format, args...)
	}
}

// Load a machine code image into memory, and reset the CPU.
func (emu *Emulator) Load(words []int32) (err error) {
	emu.Program = nil

	err = emu.Cpu.Load(words)
	if err != nil {
		return
	}

	for n, word := range words {
		emu.tracef("memory[%d]=%d\n", n, word)
	}

	return
}

// LoadProgram loads an assembled program, keeping its listing for
// error reports.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the emulator state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number for the instruction at the
// program counter, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	op, ok := emu.Program.Debug(int(emu.Cpu.Pc))
	if !ok {
		return 0
	}

	return op.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}

// Run executes until halt, printing the machine state before every
// instruction and once more after halting.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		emu.tracef("%v", emu.Cpu)
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	emu.tracef("%s", f("machine halted\n"))
	emu.tracef("%s", f("total of %v instructions executed\n", strconv.Itoa(emu.Ticks())))
	emu.tracef("%s", f("final state of machine:\n"))
	emu.tracef("%v", emu.Cpu)

	return
}
