package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_ListRuns_Offset(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := st.CreateRun(ctx, model.FlowPurchaseOrder, name)
		require.NoError(t, err)
	}

	page, err := st.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLite_UpdateRunResult_NilResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.FlowWeekly, "")
	require.NoError(t, err)

	// A nil result marshals to JSON null and reads back as an empty result.
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, model.RunStatusSkipped, nil))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSkipped, got.Status)
}

func TestSQLite_UpdateRunResult_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.UpdateRunResult(context.Background(), "nope", model.RunStatusFailed, &model.RunResult{Error: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}
