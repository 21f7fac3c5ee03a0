package datastore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

func TestGetOrCreateSpecies_IdempotentLookup(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	first, err := ds.GetOrCreateSpecies(ctx, "American Robin", "Turdus migratorius")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := ds.GetOrCreateSpecies(ctx, "American Robin", "Turdus migratorius")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same name must resolve to the same identity")
}

func TestGetOrCreateSpecies_CaseInsensitiveName(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	first, err := ds.GetOrCreateSpecies(ctx, "American Robin", "")
	require.NoError(t, err)

	second, err := ds.GetOrCreateSpecies(ctx, "american robin", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "lookup must be case-insensitive")
}

func TestGetOrCreateSpecies_ConflictingScientificName(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	_, err := ds.GetOrCreateSpecies(ctx, "American Robin", "Turdus migratorius")
	require.NoError(t, err)

	_, err = ds.GetOrCreateSpecies(ctx, "American Robin", "Turdus merula")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "conflicting scientific name must fail validation")
}

func TestGetOrCreateSpecies_BackfillsScientificName(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	first, err := ds.GetOrCreateSpecies(ctx, "American Robin", "")
	require.NoError(t, err)
	require.Empty(t, first.ScientificName)

	second, err := ds.GetOrCreateSpecies(ctx, "American Robin", "Turdus migratorius")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Turdus migratorius", second.ScientificName)
}

func TestGetOrCreateSpecies_EmptyNameRejected(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.GetOrCreateSpecies(context.Background(), "  ", "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

// TestGetOrCreateSpecies_ConcurrentCreation verifies that racing writers
// never produce two rows for the same name. The unique constraint in the
// database is the arbiter, not application-level locking.
func TestGetOrCreateSpecies_ConcurrentCreation(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	const workers = 10
	ids := make([]uint, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			species, err := ds.GetOrCreateSpecies(ctx, "Cerulean Warbler", "Setophaga cerulea")
			ids[n] = species.ID
			errs[n] = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d failed", i)
		assert.Equal(t, ids[0], ids[i], "worker %d resolved a different identity", i)
	}

	store, ok := ds.(*SQLiteStore)
	require.True(t, ok)
	var count int64
	require.NoError(t, store.DB.Model(&Species{}).Where("common_name = ?", "Cerulean Warbler").Count(&count).Error)
	assert.EqualValues(t, 1, count, "expected exactly one row for the species")
}

func TestGetOrCreateCategory_Idempotent(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	first, err := ds.GetOrCreateCategory(ctx, "Waterfowl")
	require.NoError(t, err)

	second, err := ds.GetOrCreateCategory(ctx, "waterfowl")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSearchSpecies_PrefixMatch(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	for _, name := range []string{"Common Loon", "Common Raven", "American Crow"} {
		_, err := ds.GetOrCreateSpecies(ctx, name, "")
		require.NoError(t, err)
	}

	matches, err := ds.SearchSpecies(ctx, "Common")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Common Loon", matches[0].CommonName)
	assert.Equal(t, "Common Raven", matches[1].CommonName)
}

func TestSearchSpecies_PatternCharactersMatchLiterally(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	_, err := ds.GetOrCreateSpecies(ctx, "Common Loon", "")
	require.NoError(t, err)

	matches, err := ds.SearchSpecies(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, matches, "a bare percent sign must not act as a wildcard")

	matches, err = ds.SearchSpecies(ctx, "_ommon")
	require.NoError(t, err)
	assert.Empty(t, matches, "_ must not match an arbitrary character")
}
