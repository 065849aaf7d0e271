package cpu

import (
	"iter"
)

// SymbolTable maps jump labels to their addresses.
type SymbolTable struct {
	address map[string]int
	order   []string
}

// Define binds a label to an address. A label can only be bound once.
func (st *SymbolTable) Define(name string, address int) (err error) {
	if _, ok := st.address[name]; ok {
		err = ErrLabelDuplicate
		return
	}

	if st.address == nil {
		st.address = make(map[string]int, 16)
	}
	st.address[name] = address
	st.order = append(st.order, name)

	return
}

// Resolve returns the address bound to a label.
func (st *SymbolTable) Resolve(name string) (address int, err error) {
	address, ok := st.address[name]
	if !ok {
		err = ErrLabelMissing(name)
		return
	}

	return
}

// Len returns the number of labels defined.
func (st *SymbolTable) Len() int {
	return len(st.order)
}

// All iterates over the labels in the order they were defined.
func (st *SymbolTable) All() iter.Seq2[string, int] {
	return func(yield func(name string, address int) bool) {
		for _, name := range st.order {
			if !yield(name, st.address[name]) {
				return
			}
		}
	}
}

// Reset removes all labels.
func (st *SymbolTable) Reset() {
	clear(st.address)
	st.order = st.order[:0]
}
