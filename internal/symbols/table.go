// Package symbols builds the type_of/array_size_of collaborator the
// IR generator depends on as its type-table collaborator.
// It performs no semantic validation — proper semantic analysis is an
// external collaborator — it only records what a valid
// program's declarations say about each name, once per function.
package symbols

import "tlcc/internal/types"

type entry struct {
	dataType  types.DataType
	arraySize int // types.DynamicSize if not an array
}

// Table answers type_of/array_size_of for the names declared in one
// function: its parameters and every var/array declaration in its
// body, collected ahead of IR generation.
type Table struct {
	entries map[string]entry
}

// NewTable builds an empty table scoped to a single function.
func NewTable() *Table {
	return &Table{entries: make(map[string]entry)}
}

// Declare records name's type as a plain scalar.
func (t *Table) Declare(name string, dt types.DataType) {
	t.entries[name] = entry{dataType: dt, arraySize: types.DynamicSize}
}

// DeclareArray records name's element type and declared size.
func (t *Table) DeclareArray(name string, elem types.DataType, size int) {
	t.entries[name] = entry{dataType: elem, arraySize: size}
}

// TypeOf returns the declared type of name, and whether name is known.
func (t *Table) TypeOf(name string) (types.DataType, bool) {
	e, ok := t.entries[name]
	return e.dataType, ok
}

// ArraySizeOf returns the declared array size of name, or
// (types.DynamicSize, true) if name is declared but not an array.
// ok is false only if name was never declared.
func (t *Table) ArraySizeOf(name string) (size int, ok bool) {
	e, ok := t.entries[name]
	if !ok {
		return types.DynamicSize, false
	}
	return e.arraySize, true
}
