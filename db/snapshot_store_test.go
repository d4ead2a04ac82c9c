package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/echoflow-solutions/carescribe-api/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore(t *testing.T) {
	t.Parallel()

	store, err := db.NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	// Missing snapshot reads as nil, not an error.
	payload, err := store.Read(1, "session")
	require.NoError(t, err)
	assert.Nil(t, payload)

	require.NoError(t, store.Write(1, "session", []byte(`{"progress":1}`)))
	payload, err = store.Read(1, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"progress":1}`), payload)

	// A write replaces the previous snapshot wholesale.
	require.NoError(t, store.Write(1, "session", []byte(`{"progress":2}`)))
	payload, err = store.Read(1, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"progress":2}`), payload)

	// Sessions are isolated per user and session id.
	other, err := store.Read(2, "session")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.Clear(1, "session"))
	payload, err = store.Read(1, "session")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// Clearing a missing snapshot is idempotent.
	require.NoError(t, store.Clear(1, "session"))
}

func TestSnapshotStoreConfinesHostileSessionIDs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "data", "drafts")
	store, err := db.NewSnapshotStore(dir)
	require.NoError(t, err)

	hostile := "/../../../outside/escaped"
	require.NoError(t, store.Write(7, hostile, []byte(`{"owned":true}`)))

	// Nothing lands outside the snapshot directory.
	_, err = os.Stat(filepath.Join(root, "outside"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")

	// The hostile id still round-trips like any other key.
	payload, err := store.Read(7, hostile)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"owned":true}`), payload)

	// Similar ids map to distinct snapshots.
	require.NoError(t, store.Write(7, "outside/escaped", []byte(`{"other":1}`)))
	payload, err = store.Read(7, hostile)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"owned":true}`), payload)

	require.NoError(t, store.Clear(7, hostile))
	payload, err = store.Read(7, hostile)
	require.NoError(t, err)
	assert.Nil(t, payload)
}
