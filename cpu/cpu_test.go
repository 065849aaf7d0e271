package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustCode(t *testing.T, ins Instruction) int32 {
	code, err := ins.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return int32(code)
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.Equal(MEMORY_SIZE, len(cpu.Memory.Data))
	assert.Equal(int32(0), cpu.Pc)
	assert.False(cpu.Halted)
}

func TestCpuExecute(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		ins  Instruction
		pc   int32
		reg  [REGISTER_COUNT]int32
		mem  []int32
	}){
		{"add", Instruction{Op: OP_ADD, RegA: 1, RegB: 2, Dest: 3},
			1, [8]int32{0, 10, -3, 7, 0, 0, 0, 0}, nil},
		{"add wraps", Instruction{Op: OP_ADD, RegA: 1, RegB: 1, Dest: 1},
			1, [8]int32{0, -2147483648, -3, 0, 0, 3, 0, 0}, nil},
		{"nor", Instruction{Op: OP_NOR, RegA: 1, RegB: 2, Dest: 4},
			1, [8]int32{0, 10, -3, 0, ^(10 | -3), 0, 0, 0}, nil},
		{"lw", Instruction{Op: OP_LW, RegA: 5, RegB: 6, Offset: -1},
			1, [8]int32{0, 10, -3, 0, 0, 3, 0x22, 0}, nil},
		{"sw", Instruction{Op: OP_SW, RegA: 5, RegB: 2, Offset: 2},
			1, [8]int32{0, 10, -3, 0, 0, 3, 0, 0}, []int32{0x11, 0x22, 0x33, 0x44, -3}},
		{"beq taken", Instruction{Op: OP_BEQ, RegA: 0, RegB: 0, Offset: 3},
			4, [8]int32{0, 10, -3, 0, 0, 3, 0, 0}, nil},
		{"beq not taken", Instruction{Op: OP_BEQ, RegA: 0, RegB: 1, Offset: 3},
			1, [8]int32{0, 10, -3, 0, 0, 3, 0, 0}, nil},
		{"jalr", Instruction{Op: OP_JALR, RegA: 5, RegB: 7},
			3, [8]int32{0, 10, -3, 0, 0, 3, 0, 1}, nil},
		{"jalr same", Instruction{Op: OP_JALR, RegA: 5, RegB: 5},
			3, [8]int32{0, 10, -3, 0, 0, 1, 0, 0}, nil},
		{"noop", Instruction{Op: OP_NOOP},
			1, [8]int32{0, 10, -3, 0, 0, 3, 0, 0}, nil},
	}

	for _, entry := range table {
		cpu := NewCpu(8)
		err := cpu.Load([]int32{0, 0x11, 0x22, 0x33, 0x44, 0x55})
		assert.NoError(err)

		cpu.Register = [REGISTER_COUNT]int32{0, 10, -3, 0, 0, 3, 0, 0}
		if entry.name == "add wraps" {
			cpu.Register[1] = 0x40000000
		}
		cpu.Memory.Data[0] = mustCode(t, entry.ins)

		err = cpu.Tick()
		assert.NoError(err, entry.name)
		assert.Equal(entry.pc, cpu.Pc, entry.name)
		assert.Equal(entry.reg, cpu.Register, entry.name)
		assert.Equal(1, cpu.Ticks, entry.name)
		assert.False(cpu.Halted, entry.name)
		if entry.mem != nil {
			assert.Equal(entry.mem, cpu.Memory.Populated()[1:1+len(entry.mem)], entry.name)
		}
	}
}

func TestCpuHalt(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(4)
	err := cpu.Load([]int32{
		mustCode(t, Instruction{Op: OP_NOOP}),
		mustCode(t, Instruction{Op: OP_HALT}),
		mustCode(t, Instruction{Op: OP_NOOP}),
	})
	assert.NoError(err)

	assert.NoError(cpu.Tick())
	assert.False(cpu.Halted)
	assert.NoError(cpu.Tick())
	assert.True(cpu.Halted)
	assert.Equal(2, cpu.Ticks)
	assert.Equal(int32(2), cpu.Pc)

	err = cpu.Tick()
	assert.ErrorIs(err, ErrHalted)
	assert.Equal(2, cpu.Ticks)

	cpu.Reset()
	assert.False(cpu.Halted)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(int32(0), cpu.Pc)
}

func TestCpuMemoryRange(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(4)
	err := cpu.Load([]int32{
		mustCode(t, Instruction{Op: OP_LW, RegA: 1, RegB: 2, Offset: 0}),
		mustCode(t, Instruction{Op: OP_SW, RegA: 0, RegB: 2, Offset: -1}),
		mustCode(t, Instruction{Op: OP_JALR, RegA: 3, RegB: 4}),
	})
	assert.NoError(err)

	cpu.Register[1] = 4
	err = cpu.Tick()
	assert.ErrorIs(err, ErrMemoryRange)
	assert.Equal(ErrMemory(4), err)
	assert.Equal(0, cpu.Ticks)

	cpu.Pc = 1
	err = cpu.Tick()
	assert.ErrorIs(err, ErrMemoryRange)

	// A jump out of memory faults on the next fetch.
	cpu.Pc = 2
	cpu.Register[3] = -5
	assert.NoError(cpu.Tick())
	assert.Equal(int32(-5), cpu.Pc)
	err = cpu.Tick()
	assert.ErrorIs(err, ErrMemoryRange)

	// Too large an image.
	err = cpu.Load(make([]int32, 5))
	assert.ErrorIs(err, ErrMemoryRange)
}

func TestCpuUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(4)
	assert.NoError(cpu.Load([]int32{-1}))

	err := cpu.Tick()
	assert.ErrorIs(err, ErrOpcodeUnknown)
	assert.Equal(0, cpu.Ticks)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(8)
	assert.NoError(cpu.Load([]int32{25165824, 5}))
	cpu.Register[1] = 5

	expected := "\n@@@\nstate:\n" +
		"\tpc 0\n" +
		"\tmemory:\n" +
		"\t\tmem[ 0 ] 25165824\n" +
		"\t\tmem[ 1 ] 5\n" +
		"\tregisters:\n" +
		"\t\treg[ 0 ] 0\n" +
		"\t\treg[ 1 ] 5\n" +
		"\t\treg[ 2 ] 0\n" +
		"\t\treg[ 3 ] 0\n" +
		"\t\treg[ 4 ] 0\n" +
		"\t\treg[ 5 ] 0\n" +
		"\t\treg[ 6 ] 0\n" +
		"\t\treg[ 7 ] 0\n" +
		"end state\n"
	assert.Equal(expected, cpu.String())
}
