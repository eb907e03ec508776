package table

import "iter"

// Position addresses one cell
type Position[K comparable] struct {
	Key K
	Row int
}

// Columns yields every column with its key in backing order. Each call
// starts a fresh pass.
func (t *Table[K, V]) Columns() iter.Seq2[K, *Column[V]] {
	return func(yield func(K, *Column[V]) bool) {
		t.backing().Range(yield)
	}
}

// ColumnKeys yields every column key in backing order
func (t *Table[K, V]) ColumnKeys() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.backing().Range(func(key K, _ *Column[V]) bool {
			return yield(key)
		})
	}
}

// Row returns the Present cells of one row as (key, value) pairs, or false
// when row is out of range. The sequence reads the table when iterated and
// yields nothing if the row no longer exists by then.
func (t *Table[K, V]) Row(row int) (iter.Seq2[K, V], bool) {
	if row < 0 || row >= t.rows {
		return nil, false
	}
	return func(yield func(K, V) bool) {
		if row >= t.rows {
			return
		}
		t.backing().Range(func(key K, col *Column[V]) bool {
			if v, ok := col.cells[row].Value(); ok {
				return yield(key, v)
			}
			return true
		})
	}, true
}

// RowMap returns the Present cells of one row as a map
func (t *Table[K, V]) RowMap(row int) (map[K]V, bool) {
	seq, ok := t.Row(row)
	if !ok {
		return nil, false
	}
	out := make(map[K]V)
	for key, v := range seq {
		out[key] = v
	}
	return out, true
}

// Rows yields every row in position order as a map of its Present cells
func (t *Table[K, V]) Rows() iter.Seq2[int, map[K]V] {
	return func(yield func(int, map[K]V) bool) {
		for i := 0; i < t.rows; i++ {
			m, _ := t.RowMap(i)
			if !yield(i, m) {
				return
			}
		}
	}
}

// Cells yields every Present cell with its position, column by column
func (t *Table[K, V]) Cells() iter.Seq2[Position[K], V] {
	return func(yield func(Position[K], V) bool) {
		t.backing().Range(func(key K, col *Column[V]) bool {
			for row, cell := range col.cells {
				if !cell.present {
					continue
				}
				if !yield(Position[K]{Key: key, Row: row}, cell.value) {
					return false
				}
			}
			return true
		})
	}
}

// DrainRows removes rows from the front and yields each one. Stopping early
// leaves the remaining rows in place.
func (t *Table[K, V]) DrainRows() iter.Seq[map[K]V] {
	return func(yield func(map[K]V) bool) {
		for t.rows > 0 {
			row, _ := t.RemoveRow(0)
			if !yield(row) {
				return
			}
		}
	}
}

// DrainColumns removes columns one at a time in backing order and yields
// each detached column. The row count is unchanged.
func (t *Table[K, V]) DrainColumns() iter.Seq2[K, *Column[V]] {
	return func(yield func(K, *Column[V]) bool) {
		for t.ColumnCount() > 0 {
			var (
				key   K
				found bool
			)
			t.columns.Range(func(k K, _ *Column[V]) bool {
				key, found = k, true
				return false
			})
			if !found {
				return
			}
			col, _ := t.columns.Delete(key)
			if !yield(key, col) {
				return
			}
		}
	}
}
