package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkubisiak/birdr-go/internal/conf"
)

// createTestSettings returns settings pointing at a fresh database file in a
// per-test temporary directory.
func createTestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Database.Path = filepath.Join(t.TempDir(), "test.db")
	return settings
}

func createDatabase(t *testing.T, settings *conf.Settings) Interface {
	t.Helper()

	dataStore := New(settings)

	// Attempt to open a database connection.
	require.NoError(t, dataStore.Open(), "Failed to open database")

	// Ensure the database is closed after the test completes.
	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

func TestOpen_IdempotentSchemaSetup(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)

	ds := New(settings)
	require.NoError(t, ds.Open())
	require.NoError(t, ds.Close())

	// Opening the same file again must be a no-op, not a migration failure.
	ds2 := New(settings)
	require.NoError(t, ds2.Open())
	require.NoError(t, ds2.Close())
}

func TestOpen_MissingPathFailsValidation(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	ds := New(settings)
	err := ds.Open()
	require.Error(t, err)
}
