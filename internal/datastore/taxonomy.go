// taxonomy.go: eBird taxonomy import into the species and category tables
package datastore

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/bkubisiak/birdr-go/internal/ebird"
	"github.com/bkubisiak/birdr-go/internal/errors"
)

// TaxonomyImportStats summarizes one taxonomy import run.
type TaxonomyImportStats struct {
	SpeciesCreated    int
	SpeciesExisting   int
	CategoriesCreated int
}

// ImportTaxonomy loads an eBird taxonomy CSV into the species and category
// tables. The import is idempotent: species that already exist are left
// untouched, so re-running against the same file is a no-op. The whole
// import runs in one transaction.
func (ds *DataStore) ImportTaxonomy(ctx context.Context, r io.Reader) (TaxonomyImportStats, error) {
	entries, err := ebird.ParseTaxonomy(r)
	if err != nil {
		return TaxonomyImportStats{}, err
	}

	var stats TaxonomyImportStats
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]Category)

		for i := range entries {
			entry := &entries[i]

			var categoryID *uint
			if entry.SpeciesGroup != "" {
				category, cached := categories[entry.SpeciesGroup]
				if !cached {
					var lookupErr error
					var created bool
					category, created, lookupErr = importCategoryTx(ctx, tx, entry.SpeciesGroup)
					if lookupErr != nil {
						return lookupErr
					}
					if created {
						stats.CategoriesCreated++
					}
					categories[entry.SpeciesGroup] = category
				}
				categoryID = &category.ID
			}

			created, err := importSpeciesTx(ctx, tx, entry, categoryID)
			if err != nil {
				return err
			}
			if created {
				stats.SpeciesCreated++
			} else {
				stats.SpeciesExisting++
			}
		}
		return nil
	})
	if err != nil {
		return TaxonomyImportStats{}, err
	}

	getLogger().InfoContext(ctx, "taxonomy imported",
		"species_created", stats.SpeciesCreated,
		"species_existing", stats.SpeciesExisting,
		"categories_created", stats.CategoriesCreated)
	return stats, nil
}

// importCategoryTx resolves a category during import and reports whether it
// was newly created.
func importCategoryTx(ctx context.Context, tx *gorm.DB, name string) (Category, bool, error) {
	var category Category
	err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return category, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Category{}, false, dbError(err, "lookup-category", "name", name)
	}

	category = Category{Name: name}
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		return Category{}, false, dbError(err, "create-category", "name", name)
	}
	return category, true, nil
}

// importSpeciesTx inserts one taxonomy species unless it already exists.
func importSpeciesTx(ctx context.Context, tx *gorm.DB, entry *ebird.TaxonomyEntry, categoryID *uint) (bool, error) {
	var existing Species
	err := tx.WithContext(ctx).Where("common_name = ?", entry.CommonName).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, dbError(err, "lookup-species", "common_name", entry.CommonName)
	}

	species := Species{
		CommonName:     entry.CommonName,
		ScientificName: entry.ScientificName,
		CategoryID:     categoryID,
	}
	if err := tx.WithContext(ctx).Omit("Category").Create(&species).Error; err != nil {
		return false, dbError(err, "create-species", "common_name", entry.CommonName)
	}
	return true, nil
}
