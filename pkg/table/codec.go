package table

import (
	"bytes"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
)

var jsonNull = []byte("null")

// SnapshotColumn is one encoded column
type SnapshotColumn[K comparable, V any] struct {
	Key   K         `json:"key" yaml:"key"`
	Cells []Cell[V] `json:"cells" yaml:"cells"`
}

// Snapshot is the structural encoding of a table: its row count and every
// column in backing order
type Snapshot[K comparable, V any] struct {
	Rows    int                    `json:"rows" yaml:"rows"`
	Columns []SnapshotColumn[K, V] `json:"columns" yaml:"columns"`
}

// Snapshot encodes the table. Present values are copied by assignment.
func (t *Table[K, V]) Snapshot() Snapshot[K, V] {
	s := Snapshot[K, V]{
		Rows:    t.rows,
		Columns: make([]SnapshotColumn[K, V], 0, t.ColumnCount()),
	}
	t.backing().Range(func(key K, col *Column[V]) bool {
		s.Columns = append(s.Columns, SnapshotColumn[K, V]{Key: key, Cells: col.Cells()})
		return true
	})
	return s
}

// Validate checks that s describes a consistent table
func (s Snapshot[K, V]) Validate() error {
	if s.Rows < 0 {
		return errors.New(errors.ErrorTypeFormat, "negative row count").
			WithDetail("rows", s.Rows)
	}
	seen := make(map[K]struct{}, len(s.Columns))
	for i, col := range s.Columns {
		if _, dup := seen[col.Key]; dup {
			return errors.Newf(errors.ErrorTypeFormat, "duplicate column key %v", col.Key).
				WithDetail("index", i)
		}
		seen[col.Key] = struct{}{}
		if len(col.Cells) != s.Rows {
			return errors.Newf(errors.ErrorTypeFormat, "column %v length does not match row count", col.Key).
				WithDetail("index", i).
				WithDetail("expected", s.Rows).
				WithDetail("actual", len(col.Cells))
		}
	}
	return nil
}

// FromSnapshot decodes s into a new hash-backed table
func FromSnapshot[K comparable, V any](s Snapshot[K, V], opts ...Option) (*Table[K, V], error) {
	t := New[K, V](opts...)
	if err := t.restore(s); err != nil {
		return nil, err
	}
	return t, nil
}

// restore replaces t's contents with s. t is untouched on error.
func (t *Table[K, V]) restore(s Snapshot[K, V]) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := t.checkGrowth(s.Rows); err != nil {
		return err
	}
	columns := t.newBacking()
	for _, sc := range s.Columns {
		col := newColumn[V](s.Rows, t.opts.rowCapacity)
		copy(col.cells, sc.Cells)
		columns.Put(sc.Key, col)
	}
	t.columns = columns
	t.rows = s.Rows
	return nil
}

// restoreRows replaces t's contents with the given row maps. t is untouched
// on error.
func (t *Table[K, V]) restoreRows(rows []map[K]V) error {
	nt := &Table[K, V]{factory: t.factory, opts: t.opts}
	for _, row := range rows {
		if _, err := nt.PushRow(row); err != nil {
			return err
		}
	}
	t.columns = nt.backing()
	t.factory = nt.factory
	t.rows = nt.rows
	return nil
}

// MarshalJSON implements json.Marshaler with the Snapshot layout
func (t *Table[K, V]) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(t.Snapshot())
}

// UnmarshalJSON implements json.Unmarshaler. It accepts the Snapshot layout
// or an array of row objects, which are pushed in order. A literal null
// leaves t unchanged.
func (t *Table[K, V]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []map[K]V
		if err := gojson.Unmarshal(data, &rows); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode table rows")
		}
		return t.restoreRows(rows)
	}

	var s Snapshot[K, V]
	if err := gojson.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode table snapshot")
	}
	return t.restore(s)
}

// MarshalYAML implements yaml.Marshaler with the Snapshot layout
func (t *Table[K, V]) MarshalYAML() (interface{}, error) {
	return t.Snapshot(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Like UnmarshalJSON it accepts
// the Snapshot layout or a sequence of row mappings.
func (t *Table[K, V]) UnmarshalYAML(node *yaml.Node) error {
	if isYAMLNull(node) {
		return nil
	}
	if node.Kind == yaml.SequenceNode {
		var rows []map[K]V
		if err := node.Decode(&rows); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode table rows")
		}
		return t.restoreRows(rows)
	}

	var s Snapshot[K, V]
	if err := node.Decode(&s); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode table snapshot")
	}
	return t.restore(s)
}

// MarshalJSON encodes a Missing cell as null and a Present cell as a
// one-element array, so a Present value that itself encodes as null stays
// distinguishable.
func (c Cell[V]) MarshalJSON() ([]byte, error) {
	if !c.present {
		return jsonNull, nil
	}
	return gojson.Marshal([1]V{c.value})
}

// UnmarshalJSON implements json.Unmarshaler for the MarshalJSON layout
func (c *Cell[V]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*c = Cell[V]{}
		return nil
	}
	var wrapped []V
	if err := gojson.Unmarshal(data, &wrapped); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode cell")
	}
	return c.fromWrapped(wrapped)
}

// MarshalYAML encodes a cell like MarshalJSON: null or a one-element sequence
func (c Cell[V]) MarshalYAML() (interface{}, error) {
	if !c.present {
		return nil, nil
	}
	return []V{c.value}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for the MarshalYAML layout
func (c *Cell[V]) UnmarshalYAML(node *yaml.Node) error {
	if isYAMLNull(node) {
		*c = Cell[V]{}
		return nil
	}
	var wrapped []V
	if err := node.Decode(&wrapped); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode cell")
	}
	return c.fromWrapped(wrapped)
}

func (c *Cell[V]) fromWrapped(wrapped []V) error {
	if len(wrapped) != 1 {
		return errors.Newf(errors.ErrorTypeFormat, "present cell must hold exactly one value, got %d", len(wrapped))
	}
	*c = Present(wrapped[0])
	return nil
}

func isYAMLNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
