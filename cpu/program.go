package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Opcode represents a line of assembled code with its source location and
// generated word.
type Opcode struct {
	LineNo int      // 1-based source line number.
	Ip     int      // Address of the word.
	Label  string   // Label defined on the line, if any.
	Words  []string // Mnemonic and arguments.
	Code   Code     // Generated word.
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
	Symbols *SymbolTable
}

// Debug returns the opcode that generated the word at ip.
func (prog *Program) Debug(ip int) (op *Opcode, ok bool) {
	if ip < 0 || ip >= len(prog.Opcodes) {
		return
	}

	op = &prog.Opcodes[ip]
	ok = true
	return
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (bins []int32) {
	bins = make([]int32, 0, len(prog.Opcodes))
	for _, op := range prog.Opcodes {
		bins = append(bins, int32(op.Code))
	}

	return
}

// WriteTo writes the machine code file: one signed decimal word per line.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	return WriteBinary(w, prog.Binary())
}

// WriteBinary writes words as a machine code file.
func WriteBinary(w io.Writer, words []int32) (n int64, err error) {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		var wrote int
		wrote, err = fmt.Fprintf(bw, "%d\n", word)
		n += int64(wrote)
		if err != nil {
			return
		}
	}

	err = bw.Flush()
	return
}

// ReadBinary reads a machine code file: one signed decimal word per line,
// loaded sequentially from address 0.
func ReadBinary(r io.Reader) (words []int32, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, MAX_LINE_LENGTH), MAX_LINE_LENGTH)

	for scanner.Scan() {
		line := scanner.Text()
		address := len(words)
		if address >= MEMORY_SIZE {
			err = ErrMemory(address)
			return
		}

		var v64 int64
		v64, err = strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if err != nil {
			err = ErrWord{Address: address, Line: line}
			return
		}

		words = append(words, int32(v64))
	}

	err = scanner.Err()
	if err == bufio.ErrTooLong {
		err = ErrWord{Address: len(words), Line: ""}
	}

	return
}
