// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/ezrec/lc2k/cpu"
	"github.com/ezrec/lc2k/emulator"
	"github.com/ezrec/lc2k/translate"
)

var errUsage = errors.New("usage")

// simulate loads the machine code file and runs it until halt.
func simulate(input string, trace io.Writer, verbose bool, limit int) (err error) {
	inf, err := os.Open(input)
	if err != nil {
		err = cpu.ErrFile{Path: input, Err: err}
		return
	}
	defer inf.Close()

	words, err := cpu.ReadBinary(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", input, err)
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Trace = trace
	emu.MaxTicks = limit

	err = emu.Load(words)
	if err != nil {
		return
	}

	emu.Reset()

	return emu.Run()
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
	var quiet bool
	var limit int
	var lang string

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&quiet, "q", false, "Quiet mode, no state trace")
	flag.IntVar(&limit, "n", 0, "Maximum instructions to execute (0 is unlimited)")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47)")

	flag.Parse()

	if len(lang) != 0 {
		err = translate.SetLanguage(lang)
		if err != nil {
			return
		}
	}

	if flag.NArg() != 1 {
		err = fmt.Errorf("%w: %v [-v] [-q] [-n max] <machine-code-file>", errUsage, os.Args[0])
		return
	}

	var trace io.Writer
	if !quiet {
		out := bufio.NewWriter(os.Stdout)
		// The trace up to a failing instruction is still flushed.
		atexit.Register(func() { out.Flush() })
		trace = out
	}

	return simulate(flag.Arg(0), trace, verbose, limit)
}

func main() {
	err := run()
	if err != nil {
		log.Printf("error: %v", err)
	}

	atexit.Exit(exitCode(err))
}
