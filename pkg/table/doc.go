// Package table implements hashgrid's keyed-column, positional-row storage
// engine: a two-dimensional container whose columns are addressed by any
// comparable key and whose rows are addressed by a dense zero-based position.
//
// # Overview
//
// A Table[K, V] behaves like a sparse spreadsheet. Column lookup by key is
// O(1) amortized through the backing store, and cell access by row is O(1)
// through a per-column cell slice. Every cell is either Present(v) or Missing.
//
// The engine maintains four invariants across every public operation:
//   - every column holds exactly RowCount() cells
//   - RowCount() is one past the highest row ever written, minus removals
//   - the backing store holds exactly the live columns, with no tombstones
//   - row positions are contiguous; removing a row shifts later rows down
//
// # Growth on write
//
// Writing past the current bounds grows the table instead of failing:
//
//	t := table.New[string, int]()
//	t.Set("a", 4, 10) // RowCount() == 5, column "a" is [_, _, _, _, 10]
//	t.Set("b", 1, 20) // column "b" is backfilled: [_, 20, _, _, _]
//
// Growth is staged for every column before any is installed, so a rejected
// write (negative row, WithMaxRows exceeded) leaves the table untouched.
//
// # Reading
//
// Absence is not an error. Get, Row and Column report it through the
// comma-ok idiom, whether the column is unknown, the row is out of range or
// the cell is Missing:
//
//	if v, ok := t.Get("a", 4); ok {
//		fmt.Println(v)
//	}
//
//	if row, ok := t.Row(1); ok {
//		for key, v := range row {
//			fmt.Println(key, v)
//		}
//	}
//
// Columns, ColumnKeys and a row's sequence follow the backing store's
// iteration order, which is unspecified for the default hash backing.
// NewOrdered keeps columns in a B-tree and iterates them in key order.
//
// # Serialization
//
// Snapshot and FromSnapshot convert to and from a structural form: the row
// count plus an ordered list of (key, cells) pairs. A Missing cell encodes
// as null and a Present cell as a one-element array, so Present(nil) and
// Missing stay distinct for pointer, slice, map and interface values.
// Table implements json.Marshaler, json.Unmarshaler, yaml.Marshaler and
// yaml.Unmarshaler on top of it. Decoding is all-or-nothing and rejects
// inconsistent input with an errors.ErrorTypeFormat error.
//
// # Concurrency
//
// A Table performs no locking. Callers sharing one across goroutines must
// serialize access themselves.
package table
