// Package cpu implements the machine and assembler for the LC-2K system.
//
// The machine consists of a program counter, eight 32-bit general-purpose
// registers (reg 0 through reg 7), and a flat word-addressed memory. Every
// instruction is a single word, with a 3-bit opcode at bit 22.
//
// The assembler is a two pass assembler: the first pass binds each label to
// the address of its line, the second pass encodes one word per line.
package cpu
