package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLastFailureCountEmptyStore(t *testing.T) {
	store := openTestStore(t)

	failed, err := store.LastFailureCount()
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
}

func TestRecordAndQueryRuns(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.RecordRun(Run{StartedAt: base, FailedTests: 3, PassedTests: 1}))
	require.NoError(t, store.RecordRun(Run{StartedAt: base.Add(time.Minute), FailedTests: 1, PassedTests: 3, SkippedTests: 2}))

	failed, err := store.LastFailureCount()
	require.NoError(t, err)
	assert.Equal(t, 1, failed, "most recent run wins")

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].FailedTests)
	assert.Equal(t, 3, runs[1].FailedTests)
	assert.NotEmpty(t, runs[0].ID, "missing IDs are generated")
}
