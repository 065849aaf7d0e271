// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"log"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lc2k/internal"
)

const (
	MAX_LINE_LENGTH  = 1000   // Maximum source line length, including the newline.
	MAX_LABEL_LENGTH = 6      // Maximum label length.
	MAX_ARGS         = 3      // Maximum number of arguments to an opcode.
	MAX_EXPR_STEPS   = 100000 // Maximum Starlark steps for one $(...) expression.
)

// Predefined system names for compile-time expressions.
var sysDefine = map[string]int64{
	"MEMORY_SIZE":    MEMORY_SIZE,
	"REGISTER_COUNT": REGISTER_COUNT,
	"OFFSET_MIN":     OFFSET_MIN,
	"OFFSET_MAX":     OFFSET_MAX,
}

// opMap maps mnemonics to opcodes.
var opMap = map[string]CodeOp{
	"add":  OP_ADD,
	"nor":  OP_NOR,
	"lw":   OP_LW,
	"sw":   OP_SW,
	"beq":  OP_BEQ,
	"jalr": OP_JALR,
	"halt": OP_HALT,
	"noop": OP_NOOP,
}

// argCount is the number of arguments required by each opcode class.
var argCount = map[CodeClass]int{
	CLASS_R: 3,
	CLASS_I: 3,
	CLASS_J: 2,
	CLASS_O: 0,
}

// sourceLine is a tokenized line of assembly text.
type sourceLine struct {
	LineNo int      // 1-based line number.
	Text   string   // Raw line text.
	Label  string   // Label, if any.
	Words  []string // Mnemonic, then up to MAX_ARGS arguments.
}

// Assembler is a two pass assembler. The first pass builds the symbol
// table, the second pass emits one word per source line.
type Assembler struct {
	Verbose bool         // If set, verbosely logs the assembler actions.
	Opcode  []Opcode     // List of generated opcodes.
	Symbols *SymbolTable // Labels found by the first pass.

	predefine map[string]int64 // Predefines
}

// Predefine defines a new name for compile-time expressions, or redefines
// an existing one.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = map[string]int64{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// splitFields splits a line on whitespace, keeping each $(...) expression
// as part of a single field.
func splitFields(line string) (words []string) {
	var word strings.Builder
	depth := 0

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for n, r := range line {
		switch {
		case depth == 0 && unicode.IsSpace(r):
			flush()
			continue
		case r == '(' && (depth > 0 || strings.HasSuffix(line[:n], "$")):
			depth++
		case r == ')' && depth > 0:
			depth--
		}
		word.WriteRune(r)
	}
	flush()

	return
}

// tokenize splits a line into label, mnemonic and arguments. The first
// field is a label when it ends in ':', or when it starts the line and is
// not a mnemonic.
func tokenize(text string, lineno int) (line sourceLine) {
	line = sourceLine{LineNo: lineno, Text: text}

	words := splitFields(text)
	if len(words) == 0 {
		return
	}

	first := words[0]
	switch {
	case strings.HasSuffix(first, ":"):
		line.Label = strings.TrimSuffix(first, ":")
		words = words[1:]
	case !unicode.IsSpace(rune(text[0])) && !isMnemonic(first):
		line.Label = first
		words = words[1:]
	}

	// Anything past the arguments is a comment.
	if len(words) > MAX_ARGS+1 {
		words = words[:MAX_ARGS+1]
	}
	line.Words = words

	return
}

// isMnemonic returns true if the word is an opcode or directive.
func isMnemonic(word string) bool {
	_, ok := opMap[word]
	return ok || word == ".fill"
}

// validLabel returns true if the label is a letter followed by up to
// MAX_LABEL_LENGTH-1 letters or digits.
func validLabel(label string) bool {
	if len(label) == 0 || len(label) > MAX_LABEL_LENGTH {
		return false
	}

	for n, r := range label {
		switch {
		case unicode.IsLetter(r):
		case n > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}

// readLines reads and tokenizes all lines of the input.
func readLines(input io.Reader) (lines []sourceLine, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, MAX_LINE_LENGTH), MAX_LINE_LENGTH)

	for scanner.Scan() {
		lines = append(lines, tokenize(scanner.Text(), len(lines)+1))
	}

	err = scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		err = ErrSyntax{LineNo: len(lines) + 1, Err: ErrLineTooLong}
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := readLines(input)
	if err != nil {
		return
	}

	var line *sourceLine

	defer func() {
		if err != nil && line != nil {
			err = ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Symbols = &SymbolTable{}

	// Pass 1: every line is one word, so a label's address is its line index.
	for ip := range lines {
		line = &lines[ip]
		if len(line.Label) == 0 {
			continue
		}
		if !validLabel(line.Label) {
			err = ErrLabelInvalid
			return
		}
		err = asm.Symbols.Define(line.Label, ip)
		if err != nil {
			return
		}
	}

	// Pass 2: encode.
	for ip := range lines {
		line = &lines[ip]

		if asm.Verbose {
			log.Printf("%v: %v\n", line.LineNo, line.Text)
		}

		var code Code
		code, err = asm.parseWords(line.Words, ip)
		if err != nil {
			return
		}

		asm.Opcode = append(asm.Opcode, Opcode{
			LineNo: line.LineNo,
			Ip:     ip,
			Label:  line.Label,
			Words:  line.Words,
			Code:   code,
		})
	}
	line = nil

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Symbols: asm.Symbols,
	}

	return
}

// parseWords evaluates the words of a line of assembly text at address ip.
func (asm *Assembler) parseWords(words []string, ip int) (code Code, err error) {
	if len(words) == 0 {
		err = ErrOpcodeInvalid
		return
	}

	if words[0] == ".fill" {
		if len(words) < 2 {
			err = ErrOperandMissing
			return
		}
		var value int64
		value, err = asm.valueOf(words[1], ip)
		if err != nil {
			return
		}
		if value < math.MinInt32 || value > math.MaxInt32 {
			err = ErrValueRange
			return
		}
		code = Code(uint32(int32(value)))
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	if len(args) < argCount[op.Class()] {
		err = ErrOperandMissing
		return
	}

	var regs [3]Reg
	nregs := argCount[op.Class()]
	if op.Class() == CLASS_I {
		nregs = 2
	}
	for n := range nregs {
		regs[n], err = asm.registerOf(args[n], ip)
		if err != nil {
			return
		}
	}

	switch op.Class() {
	case CLASS_R:
		code, err = MakeCodeR(op, regs[0], regs[1], regs[2])
	case CLASS_I:
		var offset int64
		offset, err = asm.offsetOf(op, args[2], ip)
		if err != nil {
			return
		}
		if offset < OFFSET_MIN || offset > OFFSET_MAX {
			err = ErrOffsetRange
			return
		}
		code, err = MakeCodeI(op, regs[0], regs[1], int32(offset))
	case CLASS_J:
		code, err = MakeCodeJ(regs[0], regs[1])
	default:
		code, err = MakeCodeO(op)
	}

	return
}

// registerOf returns the register index of a numeric word.
func (asm *Assembler) registerOf(word string, ip int) (reg Reg, err error) {
	value, err := asm.literalOf(word, ip)
	if err != nil {
		err = errors.Join(ErrRegisterInvalid, err)
		return
	}

	if value < 0 || value > REG_MASK {
		err = ErrRegisterInvalid
		return
	}

	reg = Reg(value)
	return
}

// offsetOf returns the offset field of a lw, sw, or beq. Labels are
// absolute addresses for lw and sw, and relative to the next instruction
// for beq.
func (asm *Assembler) offsetOf(op CodeOp, word string, ip int) (offset int64, err error) {
	offset, err = asm.literalOf(word, ip)
	if err == nil {
		return
	}
	if !isLabelRef(word) {
		return
	}

	address, err := asm.Symbols.Resolve(word)
	if err != nil {
		return
	}

	offset = int64(address)
	if op == OP_BEQ {
		offset -= int64(ip + 1)
	}

	return
}

// valueOf returns the value of a literal, expression, or label.
func (asm *Assembler) valueOf(word string, ip int) (value int64, err error) {
	value, err = asm.literalOf(word, ip)
	if err == nil || !isLabelRef(word) {
		return
	}

	address, err := asm.Symbols.Resolve(word)
	value = int64(address)

	return
}

// isLabelRef returns true if the word is a label reference rather than a
// malformed literal or expression.
func isLabelRef(word string) bool {
	return !strings.HasPrefix(word, "$(") && !strings.ContainsAny(word[:1], "+-0123456789")
}

// literalOf returns the value of a decimal number or a $(...) expression.
func (asm *Assembler) literalOf(word string, ip int) (value int64, err error) {
	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		value, err = asm.parenEval(word[2:len(word)-1], ip)
		return
	}

	value, err = strconv.ParseInt(word, 10, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations. System names,
// predefines, labels, and LINENO (the address of the current line) are in
// scope, later ones shadowing earlier ones.
func (asm *Assembler) parenEval(expr string, ip int) (value int64, err error) {
	thread := starlark.Thread{Name: "expr"}
	thread.SetMaxExecutionSteps(MAX_EXPR_STEPS)
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range internal.IterSeq2Concat(maps.All(sysDefine), maps.All(asm.predefine)) {
		pred[key] = starlark.MakeInt64(value)
	}
	for label, address := range asm.Symbols.All() {
		pred[label] = starlark.MakeInt(address)
	}
	pred["LINENO"] = starlark.MakeInt(ip)

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}
