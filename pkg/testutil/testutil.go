// Package testutil provides testing utilities for hashgrid
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/hashgrid/pkg/table"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// AssertAligned asserts that every column of tbl holds exactly RowCount cells
func AssertAligned[K comparable, V any](t testing.TB, tbl *table.Table[K, V]) bool {
	t.Helper()
	ok := true
	for key, col := range tbl.Columns() {
		if !assert.Equalf(t, tbl.RowCount(), col.Len(), "column %v is not aligned", key) {
			ok = false
		}
	}
	return ok
}

// RequireSameTable fails the test unless want and got hold the same row
// count, the same column keys and the same cell in every position. Column
// iteration order is ignored.
func RequireSameTable[K comparable, V any](t testing.TB, want, got *table.Table[K, V]) {
	t.Helper()
	require.Equal(t, want.RowCount(), got.RowCount(), "row count")
	require.Equal(t, want.ColumnCount(), got.ColumnCount(), "column count")
	for key, wantCol := range want.Columns() {
		gotCol, ok := got.Column(key)
		require.Truef(t, ok, "column %v missing", key)
		require.Equalf(t, wantCol.Cells(), gotCol.Cells(), "column %v cells", key)
	}
}

// Cells builds a cell slice where nil is Missing, for compact expectations
func Cells[V any](values ...*V) []table.Cell[V] {
	out := make([]table.Cell[V], len(values))
	for i, v := range values {
		if v != nil {
			out[i] = table.Present(*v)
		}
	}
	return out
}

// Ptr returns a pointer to v
func Ptr[V any](v V) *V {
	return &v
}
