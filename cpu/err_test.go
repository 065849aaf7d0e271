package cpu

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrNumbers(t *testing.T) {
	assert := assert.New(t)

	_, err := Code(1 << 25).Decode()
	assert.Equal("bad opcode 8 in word 33554432", err.Error())

	assert.Equal("address 65536 out of range", ErrMemory(MEMORY_SIZE).Error())
	assert.Equal("address -1000 out of range", ErrMemory(-1000).Error())
	assert.True(strings.HasPrefix(ErrWord{Address: 4096, Line: "x"}.Error(), "error in reading address 4096:"))
	assert.True(strings.HasPrefix(ErrSyntax{LineNo: 1234, Line: "halt", Err: ErrOpcodeInvalid}.Error(), "line 1234 'halt' "))
}

func TestErrFile(t *testing.T) {
	assert := assert.New(t)

	var err error = ErrFile{Path: "prog.as", Err: os.ErrNotExist}
	assert.ErrorIs(err, os.ErrNotExist)

	var ef ErrFile
	assert.True(errors.As(err, &ef))
	assert.Equal("prog.as", ef.Path)
}
