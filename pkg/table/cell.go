package table

import (
	"fmt"
	"iter"
	"slices"
)

// Cell is the slot at one (column, row) intersection. The zero value is Missing.
type Cell[V any] struct {
	value   V
	present bool
}

// Present returns a cell holding v
func Present[V any](v V) Cell[V] {
	return Cell[V]{value: v, present: true}
}

// Missing returns a cell that holds no value
func Missing[V any]() Cell[V] {
	return Cell[V]{}
}

// Value returns the held value and whether the cell is Present
func (c Cell[V]) Value() (V, bool) {
	return c.value, c.present
}

// IsPresent reports whether the cell holds a value
func (c Cell[V]) IsPresent() bool { return c.present }

// String implements fmt.Stringer
func (c Cell[V]) String() string {
	if !c.present {
		return "Missing"
	}
	return fmt.Sprintf("Present(%v)", c.value)
}

// Column is the ordered cell sequence of one key. Its length always equals
// the owning table's row count. A Column returned by RemoveColumn or
// DrainColumns is detached and no longer changes.
type Column[V any] struct {
	cells []Cell[V]
}

func newColumn[V any](rows, capacity int) *Column[V] {
	return &Column[V]{cells: make([]Cell[V], rows, max(rows, capacity))}
}

// Len returns the number of cells
func (c *Column[V]) Len() int { return len(c.cells) }

// Cell returns the cell at row, or Missing when row is out of range
func (c *Column[V]) Cell(row int) Cell[V] {
	if row < 0 || row >= len(c.cells) {
		return Cell[V]{}
	}
	return c.cells[row]
}

// Get returns the value at row if that cell is Present
func (c *Column[V]) Get(row int) (V, bool) {
	return c.Cell(row).Value()
}

// Cells returns a copy of the column's cells
func (c *Column[V]) Cells() []Cell[V] {
	return slices.Clone(c.cells)
}

// All yields every cell with its row position, Missing cells included
func (c *Column[V]) All() iter.Seq2[int, Cell[V]] {
	return func(yield func(int, Cell[V]) bool) {
		for i, cell := range c.cells {
			if !yield(i, cell) {
				return
			}
		}
	}
}

// Values yields the Present values with their row positions
func (c *Column[V]) Values() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i, cell := range c.cells {
			if !cell.present {
				continue
			}
			if !yield(i, cell.value) {
				return
			}
		}
	}
}

// PresentCount returns the number of Present cells
func (c *Column[V]) PresentCount() int {
	n := 0
	for _, cell := range c.cells {
		if cell.present {
			n++
		}
	}
	return n
}

// extendCells returns cells lengthened to n with Missing in the new slots.
// The input slice header is not modified.
func extendCells[V any](cells []Cell[V], n int) []Cell[V] {
	if n <= len(cells) {
		return cells
	}
	old := len(cells)
	out := slices.Grow(cells, n-old)[:n]
	clear(out[old:])
	return out
}
