package cpu

const (
	MEMORY_SIZE = 65536 // Maximum number of words in memory
)

// Memory is a flat, bounds checked array of words.
type Memory struct {
	Data   []int32
	Loaded int // Number of words populated by Load.
}

// NewMemory creates a zeroed memory of size words.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Data: make([]int32, size),
	}

	return
}

// Read returns the word at addr.
func (mem *Memory) Read(addr int32) (value int32, err error) {
	if addr < 0 || int(addr) >= len(mem.Data) {
		err = ErrMemory(addr)
		return
	}

	value = mem.Data[addr]
	return
}

// Write stores value at addr.
func (mem *Memory) Write(addr int32, value int32) (err error) {
	if addr < 0 || int(addr) >= len(mem.Data) {
		err = ErrMemory(addr)
		return
	}

	mem.Data[addr] = value
	return
}

// Load clears the memory and copies words to the low end of memory.
func (mem *Memory) Load(words []int32) (err error) {
	if len(words) > len(mem.Data) {
		err = ErrMemory(len(mem.Data))
		return
	}

	clear(mem.Data)
	copy(mem.Data, words)
	mem.Loaded = len(words)

	return
}

// Populated returns the loaded prefix of memory.
func (mem *Memory) Populated() []int32 {
	return mem.Data[:mem.Loaded]
}
