package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
)

// Collect drains rows and fails the test on any error.
func Collect(t testing.TB, rows *procedure.Rows) []ir.Row {
	t.Helper()
	out, err := rows.Collect()
	require.NoError(t, err)
	if out == nil {
		out = []ir.Row{}
	}
	return out
}

// Call invokes h and collects every row, failing the test on any error.
func Call(t testing.TB, h *procedure.Handle, args ...any) []ir.Row {
	t.Helper()
	rows, err := h.Invoke(t.Context(), args)
	require.NoError(t, err)
	return Collect(t, rows)
}
