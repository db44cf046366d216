package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/gatewaylog"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/xraydash/internal/testutil"
)

const storageDir = "../../../../testdata/xray_storage"

func newTestStore(t *testing.T, dir string, limit int) (*filesystem.ExecutionStore, *gatewaylog.Log) {
	t.Helper()
	calls := gatewaylog.New(10)
	store, err := filesystem.NewExecutionStore(dir, limit, &testutil.NoopLogger{}, &testutil.FixedClock{}, calls)
	require.NoError(t, err)
	return store, calls
}

func TestExecutionStore_ListNewestFirstSkippingMissing(t *testing.T) {
	store, calls := newTestStore(t, storageDir, 0)

	list, err := store.ListExecutions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "exec-001", list[0].ExecutionID)
	assert.Equal(t, "exec-002", list[1].ExecutionID)

	assert.True(t, list[0].Complete())
	assert.False(t, list[1].Complete())
	assert.Nil(t, list[1].Steps[0].Reasoning)

	recorded := calls.Last(1)
	require.Len(t, recorded, 1)
	assert.Equal(t, 2, recorded[0].Executions)
	assert.Equal(t, "READ", recorded[0].Method)
}

func TestExecutionStore_Limit(t *testing.T) {
	store, _ := newTestStore(t, storageDir, 2)

	// The newest index entry has no file, so the limit leaves one execution.
	list, err := store.ListExecutions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "exec-001", list[0].ExecutionID)
}

func TestExecutionStore_MissingIndex(t *testing.T) {
	store, _ := newTestStore(t, t.TempDir(), 0)

	list, err := store.ListExecutions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestExecutionStore_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{"), 0o644))
	store, calls := newTestStore(t, dir, 0)

	_, err := store.ListExecutions(context.Background())
	assert.ErrorContains(t, err, "failed to parse index")
	assert.Equal(t, 1, calls.Failures())
}

func TestExecutionStore_GetExecution(t *testing.T) {
	store, _ := newTestStore(t, storageDir, 0)

	exec, err := store.GetExecution(context.Background(), "exec-001")
	require.NoError(t, err)
	assert.Len(t, exec.Steps, 5)

	for _, id := range []string{"exec-gone", "../index", ""} {
		_, err := store.GetExecution(context.Background(), id)
		assert.ErrorIs(t, err, viewer.ErrUnknownExecution, id)
	}
}

func TestExecutionStore_RunDemoRefused(t *testing.T) {
	store, _ := newTestStore(t, storageDir, 0)

	_, err := store.RunDemo(context.Background(), demo.Request{Title: "t"})
	assert.ErrorIs(t, err, filesystem.ErrReadOnly)
}

func TestExecutionStore_Health(t *testing.T) {
	store, _ := newTestStore(t, storageDir, 0)
	assert.NoError(t, store.Health(context.Background()))

	missing, _ := newTestStore(t, filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, missing.Health(context.Background()))
}
