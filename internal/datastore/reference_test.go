package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

func TestCreateReferenceList(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	list, err := ds.CreateReferenceList(ctx, "Backyard Birds",
		[]string{"American Robin", "Blue Jay", "House Sparrow"})
	require.NoError(t, err)
	require.NotZero(t, list.ID)

	stored, err := ds.GetReferenceList(ctx, "backyard birds")
	require.NoError(t, err)
	assert.Len(t, stored.Species, 3)
}

func TestCreateReferenceList_DuplicateName(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	_, err := ds.CreateReferenceList(ctx, "Backyard Birds", []string{"American Robin"})
	require.NoError(t, err)

	_, err = ds.CreateReferenceList(ctx, "BACKYARD BIRDS", []string{"Blue Jay"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConflict))
}

func TestGetReferenceList_NotFound(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.GetReferenceList(context.Background(), "No Such List")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetReferenceLists_OrderedByName(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	_, err := ds.CreateReferenceList(ctx, "Warblers", nil)
	require.NoError(t, err)
	_, err = ds.CreateReferenceList(ctx, "Backyard Birds", nil)
	require.NoError(t, err)

	lists, err := ds.GetReferenceLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Backyard Birds", lists[0].Name)
	assert.Equal(t, "Warblers", lists[1].Name)
}

func TestDiffAgainstReferenceList(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)
	ctx := context.Background()

	_, err := ds.CreateReferenceList(ctx, "Backyard Birds",
		[]string{"American Robin", "Blue Jay", "Cedar Waxwing"})
	require.NoError(t, err)

	checklist, err := ds.OpenChecklist(ctx, "Mill Pond", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ds.RecordSighting(ctx, checklist.ID, "American Robin", 1, "", nil)
	require.NoError(t, err)

	diff, err := ds.DiffAgainstReferenceList(ctx, checklist.ID, "Backyard Birds")
	require.NoError(t, err)

	assert.Equal(t, []string{"American Robin"}, diff.Seen)
	assert.Equal(t, []string{"Blue Jay", "Cedar Waxwing"}, diff.Missing)
}
