package table

import (
	"slices"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
)

// FromColumnKeys creates an empty table with a column for each key
func FromColumnKeys[K comparable, V any](keys []K, opts ...Option) *Table[K, V] {
	t := New[K, V](append([]Option{WithCapacity(len(keys), 0)}, opts...)...)
	for _, key := range keys {
		t.EnsureColumn(key)
	}
	return t
}

// FromKeysAndRows creates a table from column keys and rows of values, where
// rows[i][j] lands in column keys[j] at position i. Every row must hold
// exactly len(keys) values and keys must be distinct.
func FromKeysAndRows[K comparable, V any](keys []K, rows [][]V, opts ...Option) (*Table[K, V], error) {
	seen := make(map[K]struct{}, len(keys))
	for i, key := range keys {
		if _, dup := seen[key]; dup {
			return nil, errors.Newf(errors.ErrorTypeValidation, "duplicate column key %v", key).
				WithDetail("index", i)
		}
		seen[key] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(keys) {
			return nil, errors.New(errors.ErrorTypeValidation, "row length does not match column count").
				WithDetail("row", i).
				WithDetail("expected", len(keys)).
				WithDetail("actual", len(row))
		}
	}

	t := New[K, V](append([]Option{WithCapacity(len(keys), len(rows))}, opts...)...)
	if err := t.checkGrowth(len(rows)); err != nil {
		return nil, err
	}
	for j, key := range keys {
		col := newColumn[V](len(rows), t.opts.rowCapacity)
		for i, row := range rows {
			col.cells[i] = Present(row[j])
		}
		t.columns.Put(key, col)
	}
	t.rows = len(rows)
	return t, nil
}

// FromRows creates a table by pushing each row map in order
func FromRows[K comparable, V any](rows []map[K]V, opts ...Option) (*Table[K, V], error) {
	t := New[K, V](append([]Option{WithCapacity(0, len(rows))}, opts...)...)
	for _, row := range rows {
		if _, err := t.PushRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// InsertColumn adds a column for a new key with the given cells. It fails
// with ErrorTypeConflict if the key exists and with ErrorTypeValidation if
// len(cells) differs from RowCount.
func (t *Table[K, V]) InsertColumn(key K, cells []Cell[V]) error {
	if t.HasColumn(key) {
		return errors.Newf(errors.ErrorTypeConflict, "column %v already exists", key)
	}
	if len(cells) != t.rows {
		return errors.New(errors.ErrorTypeValidation, "column length does not match row count").
			WithDetail("expected", t.rows).
			WithDetail("actual", len(cells))
	}
	t.columns.Put(key, &Column[V]{cells: slices.Clone(cells)})
	return nil
}

// InsertColumnWith adds a column for a new key, asking fn for each row's
// cell. fn must not modify the table.
func (t *Table[K, V]) InsertColumnWith(key K, fn func(row int) Cell[V]) error {
	if t.HasColumn(key) {
		return errors.Newf(errors.ErrorTypeConflict, "column %v already exists", key)
	}
	col := newColumn[V](t.rows, t.opts.rowCapacity)
	for i := range col.cells {
		col.cells[i] = fn(i)
	}
	t.columns.Put(key, col)
	return nil
}

// PushRowWith appends a row, asking fn for each existing column's cell.
// fn must not modify the table.
func (t *Table[K, V]) PushRowWith(fn func(key K) Cell[V]) (int, error) {
	row := t.rows
	if err := t.checkGrowth(row + 1); err != nil {
		return 0, err
	}
	t.growTo(row + 1)
	t.columns.Range(func(key K, col *Column[V]) bool {
		col.cells[row] = fn(key)
		return true
	})
	return row, nil
}
