// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/bkubisiak/birdr-go/internal/conf"
)

// Interface abstracts the underlying database implementation and defines the
// operations the command surface is allowed to call.
type Interface interface {
	Open() error
	Close() error

	// identity (get-or-create, race-free via unique constraints)
	GetOrCreateSpecies(ctx context.Context, commonName, scientificName string) (Species, error)
	GetOrCreateCategory(ctx context.Context, name string) (Category, error)
	GetOrCreateLocation(ctx context.Context, name string) (Location, error)
	SearchSpecies(ctx context.Context, prefix string) ([]Species, error)

	// checklist lifecycle
	OpenChecklist(ctx context.Context, locationName string, startTime time.Time) (Checklist, error)
	CloseChecklist(ctx context.Context, checklistID uint, endTime time.Time) (Checklist, error)
	GetChecklist(ctx context.Context, checklistID uint) (Checklist, error)
	GetChecklists(ctx context.Context, limit int) ([]Checklist, error)

	// sightings
	RecordSighting(ctx context.Context, checklistID uint, commonName string, count int, notes string, observedAt *time.Time) (Sighting, error)
	CountSightings(ctx context.Context, checklistID uint) (int64, error)

	// aggregates
	LifeList(ctx context.Context) ([]LifeListEntry, error)
	ChecklistSummary(ctx context.Context, checklistID uint) ([]SpeciesTotal, error)
	LocationTotals(ctx context.Context, locationName string) ([]SpeciesTotal, error)
	DiffAgainstReference(ctx context.Context, checklistID uint, referenceNames []string) (ChecklistDiff, error)
	DiffAgainstReferenceList(ctx context.Context, checklistID uint, listName string) (ChecklistDiff, error)
	DiffAgainstReferenceListByCategory(ctx context.Context, checklistID uint, listName string) (GroupedChecklistDiff, error)

	// reference lists
	CreateReferenceList(ctx context.Context, name string, speciesNames []string) (ReferenceList, error)
	GetReferenceList(ctx context.Context, name string) (ReferenceList, error)
	GetReferenceLists(ctx context.Context) ([]ReferenceList, error)

	// taxonomy import
	ImportTaxonomy(ctx context.Context, r io.Reader) (TaxonomyImportStats, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance

	// speciesCache caches resolved species identities by lowercased common
	// name. Species rows are immutable apart from scientific-name backfill,
	// so cached entries cannot go stale between processes in a harmful way.
	speciesCache *cache.Cache
}

const (
	speciesCacheTTL     = 15 * time.Minute
	speciesCacheCleanup = 10 * time.Minute
)

// New creates a new datastore instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{
		DataStore: DataStore{
			speciesCache: cache.New(speciesCacheTTL, speciesCacheCleanup),
		},
		Settings: settings,
	}
}
