package table_test

import (
	"maps"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
	"github.com/ajitpratap0/hashgrid/pkg/table"
	"github.com/ajitpratap0/hashgrid/pkg/testutil"
)

func TestNewTableIsEmpty(t *testing.T) {
	tbl := table.New[string, int]()

	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 0, tbl.ColumnCount())
	_, ok := tbl.Get("a", 0)
	assert.False(t, ok)
	_, ok = tbl.Row(0)
	assert.False(t, ok)
}

func TestZeroValueTableIsUsable(t *testing.T) {
	var tbl table.Table[string, int]

	_, err := tbl.Set("a", 2, 7)
	require.NoError(t, err)

	v, ok := tbl.Get("a", 2)
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 3, tbl.RowCount())
}

func TestSetThenGet(t *testing.T) {
	tbl := table.New[string, int]()

	for _, row := range []int{0, 5, 2, 17, 5} {
		_, err := tbl.Set("k", row, row*10)
		require.NoError(t, err)

		v, ok := tbl.Get("k", row)
		require.True(t, ok, "row %d", row)
		assert.Equal(t, row*10, v)
		testutil.AssertAligned(t, tbl)
	}
	assert.Equal(t, 18, tbl.RowCount())
}

func TestSetReturnsPreviousCell(t *testing.T) {
	tbl := table.New[string, string]()

	prev, err := tbl.Set("a", 0, "first")
	require.NoError(t, err)
	assert.False(t, prev.IsPresent())

	prev, err = tbl.Set("a", 0, "second")
	require.NoError(t, err)
	v, ok := prev.Value()
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestSetGrowsEveryColumn(t *testing.T) {
	tbl := table.New[string, int]()
	_, err := tbl.Set("a", 0, 1)
	require.NoError(t, err)
	_, err = tbl.Set("b", 4, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.RowCount())
	testutil.AssertAligned(t, tbl)

	a, ok := tbl.Column("a")
	require.True(t, ok)
	assert.Equal(t, testutil.Cells(testutil.Ptr(1), nil, nil, nil, nil), a.Cells())
}

func TestSetNewColumnWithinBoundsBackfills(t *testing.T) {
	tbl := table.New[string, int]()
	_, err := tbl.Set("y", 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.RowCount())

	_, err = tbl.Set("x", 1, 9)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.RowCount())
	x, ok := tbl.Column("x")
	require.True(t, ok)
	assert.Equal(t, testutil.Cells(nil, testutil.Ptr(9), nil), x.Cells())
}

func TestSetRejectsNegativeRow(t *testing.T) {
	tbl := table.New[string, int]()
	_, err := tbl.Set("a", 1, 1)
	require.NoError(t, err)

	_, err = tbl.Set("b", -1, 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, 2, tbl.RowCount())
	assert.False(t, tbl.HasColumn("b"))
}

func TestSetRejectsOverflowingRow(t *testing.T) {
	tbl := table.New[string, int]()

	_, err := tbl.Set("a", math.MaxInt, 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResource))
	assert.Equal(t, 0, tbl.ColumnCount())
}

func TestMaxRowsRollsBack(t *testing.T) {
	tbl := table.New[string, int](table.WithMaxRows(3))
	_, err := tbl.Set("a", 2, 1)
	require.NoError(t, err)

	_, err = tbl.Set("b", 3, 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResource))
	assert.Equal(t, 3, tbl.RowCount())
	assert.False(t, tbl.HasColumn("b"), "rejected write must not create its column")

	_, err = tbl.PushRow(map[string]int{"c": 1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResource))
	assert.False(t, tbl.HasColumn("c"))
	testutil.AssertAligned(t, tbl)

	// Writes inside the limit still work
	_, err = tbl.Set("b", 0, 5)
	require.NoError(t, err)
}

func TestEnsureColumn(t *testing.T) {
	tbl := table.New[string, int]()
	_, err := tbl.Set("a", 3, 1)
	require.NoError(t, err)

	assert.True(t, tbl.EnsureColumn("b"))
	assert.False(t, tbl.EnsureColumn("b"))
	assert.False(t, tbl.EnsureColumn("a"))

	assert.Equal(t, 4, tbl.RowCount())
	assert.Equal(t, 2, tbl.ColumnCount())
	b, ok := tbl.Column("b")
	require.True(t, ok)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 0, b.PresentCount())
}

func TestRemoveColumn(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("a", 2, 3)
	_, _ = tbl.Set("b", 1, 2)

	col, ok := tbl.RemoveColumn("a")
	require.True(t, ok)
	assert.Equal(t, testutil.Cells(testutil.Ptr(1), nil, testutil.Ptr(3)), col.Cells())

	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, 1, tbl.ColumnCount())
	assert.False(t, tbl.HasColumn("a"))
	_, ok = tbl.Get("a", 0)
	assert.False(t, ok)

	v, ok := tbl.Get("b", 1)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestRemoveNonexistent(t *testing.T) {
	tbl, err := table.FromKeysAndRows([]string{"a", "b"}, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	before := tbl.Clone()

	row, ok := tbl.RemoveRow(100)
	assert.False(t, ok)
	assert.Nil(t, row)
	_, ok = tbl.RemoveRow(-1)
	assert.False(t, ok)

	col, ok := tbl.RemoveColumn("nope")
	assert.False(t, ok)
	assert.Nil(t, col)

	testutil.RequireSameTable(t, before, tbl)
}

func TestGetNotFoundReasonsCollapse(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 1, 1)

	cases := map[string]struct {
		key string
		row int
	}{
		"unknown column": {"zzz", 0},
		"row past end":   {"a", 2},
		"negative row":   {"a", -1},
		"missing cell":   {"a", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v, ok := tbl.Get(tc.key, tc.row)
			assert.False(t, ok)
			assert.Zero(t, v)
			assert.False(t, tbl.Cell(tc.key, tc.row).IsPresent())
		})
	}
}

func TestRemoveRowShifts(t *testing.T) {
	tbl, err := table.FromRows([]map[string]string{
		{"name": "A", "tag": "x"},
		{"name": "B"},
		{"name": "C", "tag": "z"},
	})
	require.NoError(t, err)

	removed, ok := tbl.RemoveRow(1)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "B"}, removed)

	assert.Equal(t, 2, tbl.RowCount())
	testutil.AssertAligned(t, tbl)

	first, ok := tbl.RowMap(0)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "A", "tag": "x"}, first)

	second, ok := tbl.RowMap(1)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "C", "tag": "z"}, second)

	_, ok = tbl.Get("name", 2)
	assert.False(t, ok)
}

func TestRemoveLastRowEmptiesColumns(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)

	_, ok := tbl.RemoveRow(0)
	require.True(t, ok)
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 1, tbl.ColumnCount())
	testutil.AssertAligned(t, tbl)
}

func TestPushRowDefaulting(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 1, 2)
	require.Equal(t, 2, tbl.RowCount())

	row, err := tbl.PushRow(map[string]int{"a": 5})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, 3, tbl.RowCount())

	v, ok := tbl.Get("a", 2)
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.False(t, tbl.Cell("b", 2).IsPresent())
}

func TestPushRowCreatesBackfilledColumns(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 1, 1)

	row, err := tbl.PushRow(map[string]int{"new": 9})
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	col, ok := tbl.Column("new")
	require.True(t, ok)
	assert.Equal(t, testutil.Cells(nil, nil, testutil.Ptr(9)), col.Cells())
	testutil.AssertAligned(t, tbl)
}

func TestPushEmptyRow(t *testing.T) {
	tbl := table.New[string, int]()

	row, err := tbl.PushRow(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, tbl.RowCount())
	assert.Equal(t, 0, tbl.ColumnCount())
}

func TestUpdateAndUnset(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 2)
	_, _ = tbl.Set("a", 2, 3)

	assert.True(t, tbl.Update("a", 0, func(v int) int { return v * 10 }))
	v, _ := tbl.Get("a", 0)
	assert.Equal(t, 20, v)

	called := false
	assert.False(t, tbl.Update("a", 1, func(v int) int { called = true; return v }))
	assert.False(t, tbl.Update("zzz", 0, func(v int) int { called = true; return v }))
	assert.False(t, called)

	old, ok := tbl.Unset("a", 2)
	require.True(t, ok)
	assert.Equal(t, 3, old)
	assert.Equal(t, 3, tbl.RowCount())
	_, ok = tbl.Get("a", 2)
	assert.False(t, ok)
}

func TestUpdateRow(t *testing.T) {
	for name, tbl := range map[string]*table.Table[string, int]{
		"hash":    table.New[string, int](),
		"ordered": table.NewOrdered[string, int](),
	} {
		t.Run(name, func(t *testing.T) {
			_, _ = tbl.Set("a", 1, 2)
			_, _ = tbl.Set("b", 1, 3)
			_, _ = tbl.Set("b", 0, 7)
			tbl.EnsureColumn("c")

			seen := map[string]int{}
			require.True(t, tbl.UpdateRow(1, func(key string, v int) int {
				seen[key] = v
				return v + 100
			}))
			assert.Equal(t, map[string]int{"a": 2, "b": 3}, seen)

			row, ok := tbl.RowMap(1)
			require.True(t, ok)
			assert.Equal(t, map[string]int{"a": 102, "b": 103}, row)
			v, _ := tbl.Get("b", 0)
			assert.Equal(t, 7, v, "other rows are untouched")
			assert.False(t, tbl.Cell("c", 1).IsPresent())

			called := false
			assert.False(t, tbl.UpdateRow(2, func(string, int) int { called = true; return 0 }))
			assert.False(t, tbl.UpdateRow(-1, func(string, int) int { called = true; return 0 }))
			assert.False(t, called)
			assert.Equal(t, 2, tbl.RowCount())
			testutil.AssertAligned(t, tbl)
		})
	}
}

func TestClearKeepsColumns(t *testing.T) {
	tbl, err := table.FromKeysAndRows([]string{"a", "b"}, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)

	tbl.Clear()
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 2, tbl.ColumnCount())
	testutil.AssertAligned(t, tbl)

	_, err = tbl.Set("a", 1, 7)
	require.NoError(t, err)
	assert.False(t, tbl.Cell("a", 0).IsPresent(), "cleared cells must not reappear")
	assert.False(t, tbl.Cell("b", 1).IsPresent())
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 1, 1)

	c := tbl.Clone()
	_, _ = c.Set("a", 1, 2)
	_, _ = c.Set("b", 5, 3)

	v, _ := tbl.Get("a", 1)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, tbl.RowCount())
	assert.False(t, tbl.HasColumn("b"))
}

func TestStats(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 3, 1)
	_, _ = tbl.Set("b", 2, 1)

	assert.Equal(t, table.Stats{Rows: 4, Columns: 2, Cells: 8, PresentCells: 3}, tbl.Stats())
}

func TestFromKeysAndRows(t *testing.T) {
	tbl, err := table.FromKeysAndRows(
		[]string{"hour", "minute", "second"},
		[][]int{{7, 15, 13}, {8, 30, 32}, {9, 45, 16}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, 3, tbl.ColumnCount())
	row, ok := tbl.RowMap(1)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"hour": 8, "minute": 30, "second": 32}, row)
}

func TestFromKeysAndRowsValidation(t *testing.T) {
	_, err := table.FromKeysAndRows([]string{"a", "b"}, [][]int{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = table.FromKeysAndRows([]string{"a", "a"}, [][]int{{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = table.FromKeysAndRows([]string{"a"}, [][]int{{1}, {2}}, table.WithMaxRows(1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResource))
}

func TestFromColumnKeys(t *testing.T) {
	tbl := table.FromColumnKeys[string, int]([]string{"a", "b", "a"})

	assert.Equal(t, 2, tbl.ColumnCount())
	assert.Equal(t, 0, tbl.RowCount())
}

func TestInsertColumn(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 2, 1)

	err := tbl.InsertColumn("b", testutil.Cells(testutil.Ptr(1), nil, testutil.Ptr(3)))
	require.NoError(t, err)
	v, ok := tbl.Get("b", 2)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	err = tbl.InsertColumn("b", testutil.Cells[int](nil, nil, nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	err = tbl.InsertColumn("c", testutil.Cells[int](nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.False(t, tbl.HasColumn("c"))
}

func TestInsertColumnCopiesInput(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)

	cells := []table.Cell[int]{table.Present(1)}
	require.NoError(t, tbl.InsertColumn("b", cells))
	cells[0] = table.Present(99)

	v, _ := tbl.Get("b", 0)
	assert.Equal(t, 1, v)
}

func TestInsertColumnWith(t *testing.T) {
	tbl, err := table.FromKeysAndRows([]string{"a"}, [][]int{{1}, {2}, {3}})
	require.NoError(t, err)

	err = tbl.InsertColumnWith("double", func(row int) table.Cell[int] {
		v, ok := tbl.Get("a", row)
		if !ok || v == 2 {
			return table.Missing[int]()
		}
		return table.Present(v * 2)
	})
	require.NoError(t, err)

	col, ok := tbl.Column("double")
	require.True(t, ok)
	assert.Equal(t, testutil.Cells(testutil.Ptr(2), nil, testutil.Ptr(6)), col.Cells())

	err = tbl.InsertColumnWith("a", func(int) table.Cell[int] { return table.Missing[int]() })
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}

func TestPushRowWith(t *testing.T) {
	tbl := table.FromColumnKeys[string, int]([]string{"a", "b"})

	row, err := tbl.PushRowWith(func(key string) table.Cell[int] {
		if key == "a" {
			return table.Present(1)
		}
		return table.Missing[int]()
	})
	require.NoError(t, err)
	assert.Equal(t, 0, row)

	r, ok := tbl.RowMap(0)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"a": 1}, r)
}

func TestOrderedBackingIteratesInKeyOrder(t *testing.T) {
	tbl := table.NewOrdered[string, int]()
	for _, key := range []string{"m", "c", "x", "a"} {
		_, err := tbl.Set(key, 0, 1)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "c", "m", "x"}, slices.Collect(tbl.ColumnKeys()))

	_, ok := tbl.RemoveColumn("c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "m", "x"}, slices.Collect(tbl.ColumnKeys()))

	clone := tbl.Clone()
	assert.Equal(t, []string{"a", "m", "x"}, slices.Collect(clone.ColumnKeys()))
}

// Both backings must agree cell for cell under the same operation sequence
func TestBackingsAgreeUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hash := table.New[int, int]()
	ordered := table.NewOrdered[int, int]()

	for step := 0; step < 2000; step++ {
		key := rng.Intn(8)
		row := rng.Intn(12)
		switch rng.Intn(6) {
		case 0, 1:
			_, err1 := hash.Set(key, row, step)
			_, err2 := ordered.Set(key, row, step)
			require.NoError(t, err1)
			require.NoError(t, err2)
		case 2:
			r1, ok1 := hash.RemoveRow(row)
			r2, ok2 := ordered.RemoveRow(row)
			require.Equal(t, ok1, ok2)
			require.Equal(t, r1, r2)
		case 3:
			_, ok1 := hash.RemoveColumn(key)
			_, ok2 := ordered.RemoveColumn(key)
			require.Equal(t, ok1, ok2)
		case 4:
			values := map[int]int{key: step, (key + 1) % 8: -step}
			r1, err1 := hash.PushRow(values)
			r2, err2 := ordered.PushRow(values)
			require.NoError(t, err1)
			require.NoError(t, err2)
			require.Equal(t, r1, r2)
		case 5:
			require.Equal(t, hash.EnsureColumn(key), ordered.EnsureColumn(key))
		}

		require.True(t, testutil.AssertAligned(t, hash), "step %d", step)
		require.True(t, testutil.AssertAligned(t, ordered), "step %d", step)
		testutil.RequireSameTable(t, hash, ordered)
	}
}

func TestRowsMatchesRowMap(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 2, 2)

	got := make(map[int]map[string]int)
	for i, row := range tbl.Rows() {
		got[i] = row
	}
	assert.Equal(t, map[int]map[string]int{
		0: {"a": 1},
		1: {},
		2: {"b": 2},
	}, got)
}

func TestRowSequenceIsRestartable(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 0, 2)

	seq, ok := tbl.Row(0)
	require.True(t, ok)
	first := maps.Collect(seq)
	second := maps.Collect(seq)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, first)

	_, _ = tbl.RemoveRow(0)
	assert.Empty(t, maps.Collect(seq), "a row removed after Row was called yields nothing")
}

func TestColumnsIsRestartable(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 0, 2)

	count := func() int {
		n := 0
		for range tbl.Columns() {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestCells(t *testing.T) {
	tbl := table.NewOrdered[string, int]()
	_, _ = tbl.Set("b", 1, 2)
	_, _ = tbl.Set("a", 0, 1)

	var got []table.Position[string]
	for pos, v := range tbl.Cells() {
		got = append(got, pos)
		want, _ := tbl.Get(pos.Key, pos.Row)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, []table.Position[string]{{Key: "a", Row: 0}, {Key: "b", Row: 1}}, got)
}

func TestDrainRows(t *testing.T) {
	tbl, err := table.FromKeysAndRows([]string{"a"}, [][]int{{1}, {2}, {3}})
	require.NoError(t, err)

	var got []int
	for row := range tbl.DrainRows() {
		got = append(got, row["a"])
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, tbl.RowCount())

	v, _ := tbl.Get("a", 0)
	assert.Equal(t, 3, v)
}

func TestDrainColumns(t *testing.T) {
	tbl := table.NewOrdered[string, int]()
	_, _ = tbl.Set("b", 1, 2)
	_, _ = tbl.Set("a", 0, 1)

	var keys []string
	for key, col := range tbl.DrainColumns() {
		keys = append(keys, key)
		assert.Equal(t, 2, col.Len())
	}
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, 0, tbl.ColumnCount())
	assert.Equal(t, 2, tbl.RowCount())
}

func TestDetachedColumnDoesNotChange(t *testing.T) {
	tbl := table.New[string, int]()
	_, _ = tbl.Set("a", 0, 1)
	_, _ = tbl.Set("b", 2, 1)

	col, _ := tbl.RemoveColumn("a")
	_, _ = tbl.Set("b", 9, 1)
	_, _ = tbl.RemoveRow(0)

	assert.Equal(t, 3, col.Len())
	v, ok := col.Get(0)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}
