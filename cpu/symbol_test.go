package cpu

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable(t *testing.T) {
	assert := assert.New(t)

	st := &SymbolTable{}
	assert.Equal(0, st.Len())

	_, err := st.Resolve("start")
	assert.ErrorIs(err, ErrLabelMissing("start"))

	assert.NoError(st.Define("start", 0))
	assert.NoError(st.Define("loop", 4))
	assert.NoError(st.Define("done", 2))
	assert.Equal(3, st.Len())

	address, err := st.Resolve("loop")
	assert.NoError(err)
	assert.Equal(4, address)

	err = st.Define("loop", 9)
	assert.ErrorIs(err, ErrLabelDuplicate)
	address, _ = st.Resolve("loop")
	assert.Equal(4, address)

	names := slices.Collect(maps.Keys(maps.Collect(st.All())))
	assert.ElementsMatch([]string{"start", "loop", "done"}, names)

	var ordered []string
	for name := range st.All() {
		ordered = append(ordered, name)
	}
	assert.Equal([]string{"start", "loop", "done"}, ordered)

	st.Reset()
	assert.Equal(0, st.Len())
	_, err = st.Resolve("start")
	assert.Error(err)
	assert.NoError(st.Define("start", 1))
}
