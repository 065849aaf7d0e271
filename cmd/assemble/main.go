// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/ezrec/lc2k/cpu"
	"github.com/ezrec/lc2k/translate"
)

var errUsage = errors.New("usage")

// defines collects -D NAME=VALUE flags.
type defines map[string]int64

func (d defines) String() string {
	var pairs []string
	for name, value := range d {
		pairs = append(pairs, fmt.Sprintf("%v=%v", name, value))
	}
	return strings.Join(pairs, ",")
}

func (d defines) Set(arg string) (err error) {
	name, text, ok := strings.Cut(arg, "=")
	if !ok || len(name) == 0 {
		err = fmt.Errorf("%q is not NAME=VALUE", arg)
		return
	}

	value, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return
	}

	d[name] = value
	return
}

// assemble translates the source file, and writes the machine code file
// only if the whole source assembled.
func assemble(source, output string, verbose bool, defs defines) (err error) {
	inf, err := os.Open(source)
	if err != nil {
		err = cpu.ErrFile{Path: source, Err: err}
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for name, value := range defs {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", source, err)
		return
	}

	err = writeOutput(output, prog)
	if err != nil {
		return
	}

	if verbose {
		for name, address := range prog.Symbols.All() {
			log.Printf("%v = %d", name, address)
		}
	}

	return
}

// writeOutput writes the machine code file, removing it if the write fails.
func writeOutput(output string, wt io.WriterTo) (err error) {
	ouf, err := os.Create(output)
	if err != nil {
		err = cpu.ErrFile{Path: output, Err: err}
		return
	}

	_, err = wt.WriteTo(ouf)
	if cerr := ouf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		err = fmt.Errorf("%v: %w", output, err)
		return
	}

	return
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

func run() (err error) {
	var verbose bool
	var lang string
	defs := defines{}

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47)")
	flag.Var(defs, "D", "Predefine NAME=VALUE for $(...) expressions")

	flag.Parse()

	if len(lang) != 0 {
		err = translate.SetLanguage(lang)
		if err != nil {
			return
		}
	}

	if flag.NArg() != 2 {
		err = fmt.Errorf("%w: %v [-v] [-D NAME=VALUE]... <assembly-code-file> <machine-code-file>", errUsage, os.Args[0])
		return
	}

	return assemble(flag.Arg(0), flag.Arg(1), verbose, defs)
}

func main() {
	err := run()
	if err != nil {
		log.Printf("error: %v", err)
	}

	atexit.Exit(exitCode(err))
}
