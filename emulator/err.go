package emulator

import (
	"errors"
	"strconv"

	"github.com/ezrec/lc2k/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("instruction limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     int32
	LineNo int // Source line, if the program listing is known.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("pc %v line %v %v", strconv.Itoa(int(err.Pc)), strconv.Itoa(err.LineNo), err.Err)
	}
	return f("pc %v %v", strconv.Itoa(int(err.Pc)), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
