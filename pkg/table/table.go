package table

import (
	"cmp"
	"math"
	"slices"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
)

// options holds construction settings shared by every constructor
type options struct {
	columnCapacity int
	rowCapacity    int
	maxRows        int
}

// Option configures a Table at construction
type Option func(*options)

// WithCapacity pre-sizes the backing store for columns keys and every new
// column for rows cells
func WithCapacity(columns, rows int) Option {
	return func(o *options) {
		o.columnCapacity = max(columns, 0)
		o.rowCapacity = max(rows, 0)
	}
}

// WithMaxRows caps the row count. Growth beyond n rows fails with an
// errors.ErrorTypeResource error and leaves the table unchanged. Zero or a
// negative n means no cap.
func WithMaxRows(n int) Option {
	return func(o *options) {
		o.maxRows = max(n, 0)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Table is a two-dimensional container of V with columns keyed by K and rows
// addressed by position. The zero value is an empty table over a hash backing.
type Table[K comparable, V any] struct {
	columns Backing[K, V]
	factory BackingFactory[K, V]
	rows    int
	opts    options
}

// New creates an empty table over the default hash backing
func New[K comparable, V any](opts ...Option) *Table[K, V] {
	return NewWithBacking(HashBacking[K, V], opts...)
}

// NewOrdered creates an empty table whose columns iterate in ascending key order
func NewOrdered[K cmp.Ordered, V any](opts ...Option) *Table[K, V] {
	return NewWithBacking(OrderedBacking[K, V], opts...)
}

// NewWithBacking creates an empty table whose column store comes from factory
func NewWithBacking[K comparable, V any](factory BackingFactory[K, V], opts ...Option) *Table[K, V] {
	o := buildOptions(opts)
	return &Table[K, V]{
		columns: factory(o.columnCapacity),
		factory: factory,
		opts:    o,
	}
}

// backing returns the column store, creating it for a zero-value table
func (t *Table[K, V]) backing() Backing[K, V] {
	if t.columns == nil {
		t.columns = t.newBacking()
	}
	return t.columns
}

func (t *Table[K, V]) newBacking() Backing[K, V] {
	if t.factory == nil {
		t.factory = HashBacking[K, V]
	}
	return t.factory(t.opts.columnCapacity)
}

// RowCount returns the number of rows
func (t *Table[K, V]) RowCount() int { return t.rows }

// ColumnCount returns the number of columns
func (t *Table[K, V]) ColumnCount() int {
	if t.columns == nil {
		return 0
	}
	return t.columns.Len()
}

// HasColumn reports whether key names a column
func (t *Table[K, V]) HasColumn(key K) bool {
	_, ok := t.backing().Get(key)
	return ok
}

// Column returns the live column for key. The column reflects later writes
// to the table; use Cells for a stable copy.
func (t *Table[K, V]) Column(key K) (*Column[V], bool) {
	return t.backing().Get(key)
}

// EnsureColumn creates an all-Missing column for key if it does not exist.
// It reports whether a column was created. The row count is unchanged.
func (t *Table[K, V]) EnsureColumn(key K) bool {
	if t.HasColumn(key) {
		return false
	}
	t.columns.Put(key, newColumn[V](t.rows, t.opts.rowCapacity))
	return true
}

// ensure returns the column for key, creating it if needed
func (t *Table[K, V]) ensure(key K) *Column[V] {
	if col, ok := t.backing().Get(key); ok {
		return col
	}
	col := newColumn[V](t.rows, t.opts.rowCapacity)
	t.columns.Put(key, col)
	return col
}

// RemoveColumn deletes the column for key and returns its cells. Other
// columns and the row count are unchanged.
func (t *Table[K, V]) RemoveColumn(key K) (*Column[V], bool) {
	return t.backing().Delete(key)
}

// Get returns the value at (key, row). It reports false when the column does
// not exist, the row is out of range or the cell is Missing.
func (t *Table[K, V]) Get(key K, row int) (V, bool) {
	var zero V
	if row < 0 || row >= t.rows {
		return zero, false
	}
	col, ok := t.backing().Get(key)
	if !ok {
		return zero, false
	}
	return col.cells[row].Value()
}

// Cell returns the cell at (key, row); Missing for an unknown column or row
func (t *Table[K, V]) Cell(key K, row int) Cell[V] {
	if row < 0 || row >= t.rows {
		return Cell[V]{}
	}
	col, ok := t.backing().Get(key)
	if !ok {
		return Cell[V]{}
	}
	return col.cells[row]
}

// Set stores value at (key, row) and returns the cell it replaced. An unknown
// key creates its column; a row at or past RowCount grows every column to
// row+1 with Missing cells. A negative row fails with ErrorTypeValidation and
// growth past WithMaxRows fails with ErrorTypeResource; on failure nothing
// changes.
func (t *Table[K, V]) Set(key K, row int, value V) (Cell[V], error) {
	if err := t.reserve(row); err != nil {
		return Cell[V]{}, err
	}
	col := t.ensure(key)
	if row >= t.rows {
		t.growTo(row + 1)
	}
	prev := col.cells[row]
	col.cells[row] = Present(value)
	return prev, nil
}

// Update replaces the Present value at (key, row) with fn(value). It reports
// false and does not call fn when there is no such value.
func (t *Table[K, V]) Update(key K, row int, fn func(V) V) bool {
	if row < 0 || row >= t.rows {
		return false
	}
	col, ok := t.backing().Get(key)
	if !ok || !col.cells[row].present {
		return false
	}
	col.cells[row].value = fn(col.cells[row].value)
	return true
}

// UpdateRow replaces every Present value of row with fn(key, value). Missing
// cells are skipped. It reports false when row is out of range.
func (t *Table[K, V]) UpdateRow(row int, fn func(K, V) V) bool {
	if row < 0 || row >= t.rows {
		return false
	}
	t.backing().Range(func(key K, col *Column[V]) bool {
		if cell := &col.cells[row]; cell.present {
			cell.value = fn(key, cell.value)
		}
		return true
	})
	return true
}

// Unset turns the cell at (key, row) Missing and returns what it held. The
// row count never changes.
func (t *Table[K, V]) Unset(key K, row int) (V, bool) {
	var zero V
	if row < 0 || row >= t.rows {
		return zero, false
	}
	col, ok := t.backing().Get(key)
	if !ok {
		return zero, false
	}
	v, ok := col.cells[row].Value()
	col.cells[row] = Cell[V]{}
	return v, ok
}

// RemoveRow deletes position row from every column, shifting later rows down
// by one. It returns the row's Present values keyed by column, or false when
// row is out of range. Cost is proportional to the total cell count.
func (t *Table[K, V]) RemoveRow(row int) (map[K]V, bool) {
	if row < 0 || row >= t.rows {
		return nil, false
	}
	out := make(map[K]V)
	t.backing().Range(func(key K, col *Column[V]) bool {
		if v, ok := col.cells[row].Value(); ok {
			out[key] = v
		}
		col.cells = slices.Delete(col.cells, row, row+1)
		return true
	})
	t.rows--
	return out, true
}

// PushRow appends a row at position RowCount. Columns absent from values get
// a Missing cell; keys that are not yet columns become columns backfilled
// with Missing. It returns the new row's position.
func (t *Table[K, V]) PushRow(values map[K]V) (int, error) {
	row := t.rows
	if err := t.checkGrowth(row + 1); err != nil {
		return 0, err
	}
	for key := range values {
		t.ensure(key)
	}
	t.growTo(row + 1)
	for key, v := range values {
		col, _ := t.columns.Get(key)
		col.cells[row] = Present(v)
	}
	return row, nil
}

// Clear removes every row and keeps the columns
func (t *Table[K, V]) Clear() {
	t.backing().Range(func(_ K, col *Column[V]) bool {
		clear(col.cells)
		col.cells = col.cells[:0]
		return true
	})
	t.rows = 0
}

// Clone returns a deep copy over a fresh backing of the same kind. Values
// themselves are copied by assignment.
func (t *Table[K, V]) Clone() *Table[K, V] {
	c := &Table[K, V]{factory: t.factory, rows: t.rows, opts: t.opts}
	c.columns = c.newBacking()
	t.backing().Range(func(key K, col *Column[V]) bool {
		c.columns.Put(key, &Column[V]{cells: slices.Clone(col.cells)})
		return true
	})
	return c
}

// Stats describes a table's dimensions
type Stats struct {
	Rows         int
	Columns      int
	Cells        int
	PresentCells int
}

// Stats returns the table's current dimensions
func (t *Table[K, V]) Stats() Stats {
	s := Stats{Rows: t.rows, Columns: t.ColumnCount()}
	s.Cells = s.Rows * s.Columns
	t.backing().Range(func(_ K, col *Column[V]) bool {
		s.PresentCells += col.PresentCount()
		return true
	})
	return s
}

// reserve validates that row can be written
func (t *Table[K, V]) reserve(row int) error {
	if row < 0 {
		return errors.New(errors.ErrorTypeValidation, "row position must not be negative").
			WithDetail("row", row)
	}
	if row < t.rows {
		return nil
	}
	if row == math.MaxInt {
		return errors.New(errors.ErrorTypeResource, "row position overflows the row count").
			WithDetail("row", row)
	}
	return t.checkGrowth(row + 1)
}

// checkGrowth validates that the table may hold rows rows
func (t *Table[K, V]) checkGrowth(rows int) error {
	if rows < 0 {
		return errors.New(errors.ErrorTypeResource, "row count overflow").
			WithDetail("current_rows", t.rows)
	}
	if t.opts.maxRows > 0 && rows > t.opts.maxRows {
		return errors.New(errors.ErrorTypeResource, "row limit exceeded").
			WithDetail("max_rows", t.opts.maxRows).
			WithDetail("requested_rows", rows)
	}
	return nil
}

// growTo extends every column to n cells. All grown slices are built before
// any is installed.
func (t *Table[K, V]) growTo(n int) {
	if n <= t.rows {
		return
	}
	type staged struct {
		col   *Column[V]
		cells []Cell[V]
	}
	pending := make([]staged, 0, t.backing().Len())
	t.columns.Range(func(_ K, col *Column[V]) bool {
		pending = append(pending, staged{col: col, cells: extendCells(col.cells, n)})
		return true
	})
	for _, p := range pending {
		p.col.cells = p.cells
	}
	t.rows = n
}
