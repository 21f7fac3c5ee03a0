package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

func TestOpenChecklist_CreatesLocationLazily(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-2 * time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)
	require.NotZero(t, checklist.ID)
	require.NotNil(t, checklist.Location)
	assert.Equal(t, "Mill Pond", checklist.Location.Name)
	assert.False(t, checklist.IsClosed())

	// A second outing at the same place reuses the location row.
	second, err := ds.OpenChecklist(ctx, "mill pond", start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, checklist.LocationID, second.LocationID)
}

func TestOpenChecklist_FutureStartRejected(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.OpenChecklist(context.Background(), "Mill Pond", time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestCloseChecklist(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-3 * time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)

	closed, err := ds.CloseChecklist(ctx, checklist.ID, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	require.NotNil(t, closed.EndTime)
	assert.False(t, closed.EndTime.Before(closed.StartTime))
}

func TestCloseChecklist_AlreadyClosed(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-3 * time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)

	_, err = ds.CloseChecklist(ctx, checklist.ID, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = ds.CloseChecklist(ctx, checklist.ID, start.Add(2*time.Hour))
	require.Error(t, err)
	assert.True(t, errors.IsState(err), "double close must fail with a state error")
}

func TestCloseChecklist_EndBeforeStartLeavesChecklistOpen(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)

	_, err = ds.CloseChecklist(ctx, checklist.ID, start.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	reloaded, err := ds.GetChecklist(ctx, checklist.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsClosed(), "failed close must leave the checklist open")
}

func TestCloseChecklist_NotFound(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.CloseChecklist(context.Background(), 9999, time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRecordSighting_MergesDuplicateSpecies(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	first, err := ds.RecordSighting(ctx, checklist.ID, "Mallard", 2, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Count)

	merged, err := ds.RecordSighting(ctx, checklist.ID, "Mallard", 3, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Count, "duplicate species must merge counts additively")

	rows, err := ds.CountSightings(ctx, checklist.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows, "merge must not create a second row")
}

func TestRecordSighting_NonPositiveCountRejected(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	for _, count := range []int{0, -3} {
		_, err = ds.RecordSighting(ctx, checklist.ID, "Mallard", count, "", nil)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err), "count %d must fail validation", count)
	}

	rows, err := ds.CountSightings(ctx, checklist.ID)
	require.NoError(t, err)
	assert.Zero(t, rows, "rejected sightings must not leave rows behind")
}

func TestRecordSighting_ClosedChecklistRejected(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-2 * time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)

	_, err = ds.RecordSighting(ctx, checklist.ID, "Mallard", 1, "", nil)
	require.NoError(t, err)

	_, err = ds.CloseChecklist(ctx, checklist.ID, start.Add(time.Hour))
	require.NoError(t, err)

	before, err := ds.CountSightings(ctx, checklist.ID)
	require.NoError(t, err)

	_, err = ds.RecordSighting(ctx, checklist.ID, "Great Blue Heron", 1, "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsState(err), "writes to a closed checklist must fail with a state error")

	after, err := ds.CountSightings(ctx, checklist.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no row may be inserted on a closed checklist")
}

func TestRecordSighting_UnknownChecklist(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.RecordSighting(context.Background(), 4242, "Mallard", 1, "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRecordSighting_AtomicSpeciesResolution(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	start := time.Now().Add(-2 * time.Hour)
	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", start)
	require.NoError(t, err)
	_, err = ds.CloseChecklist(ctx, checklist.ID, start.Add(time.Hour))
	require.NoError(t, err)

	// The species does not exist yet; the rejected write must not create it.
	_, err = ds.RecordSighting(ctx, checklist.ID, "Belted Kingfisher", 1, "", nil)
	require.Error(t, err)

	matches, err := ds.SearchSpecies(ctx, "Belted Kingfisher")
	require.NoError(t, err)
	assert.Empty(t, matches, "failed sighting must not leave a species row behind")
}

// A storage failure on the sighting insert itself must undo the species row
// resolved earlier in the same transaction.
func TestRecordSighting_RollsBackSpeciesOnWriteFailure(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	store, ok := ds.(*SQLiteStore)
	require.True(t, ok)
	// Break the sighting write while leaving species resolution intact.
	require.NoError(t, store.DB.Exec("DROP TABLE sightings").Error)

	_, err = ds.RecordSighting(ctx, checklist.ID, "Belted Kingfisher", 1, "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsDatabase(err))

	var count int64
	require.NoError(t, store.DB.Model(&Species{}).
		Where("common_name = ?", "Belted Kingfisher").
		Count(&count).Error)
	assert.Zero(t, count, "species created in the failed transaction must be rolled back")
}

func TestGetChecklists_NewestFirst(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	older, err := ds.OpenChecklist(ctx, "Mill Pond", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	newer, err := ds.OpenChecklist(ctx, "Cedar Swamp", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	checklists, err := ds.GetChecklists(ctx, 10)
	require.NoError(t, err)
	require.Len(t, checklists, 2)
	assert.Equal(t, newer.ID, checklists[0].ID)
	assert.Equal(t, older.ID, checklists[1].ID)
}
