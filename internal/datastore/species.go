// species.go: get-or-create and lookup operations for species identities
package datastore

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// GetOrCreateSpecies looks a species up by its case-insensitively unique
// common name and creates it when absent. The unique constraint on the
// common name column is the source of truth: a lost creation race falls back
// to fetching the row the winner inserted.
func (ds *DataStore) GetOrCreateSpecies(ctx context.Context, commonName, scientificName string) (Species, error) {
	if strings.TrimSpace(commonName) == "" {
		return Species{}, validationError("common name must not be empty", "common_name", commonName)
	}

	cacheKey := speciesCacheKey(commonName)
	if cached, found := ds.speciesCache.Get(cacheKey); found {
		species := cached.(Species)
		if err := checkScientificName(&species, scientificName); err != nil {
			return Species{}, err
		}
		if scientificName == "" || species.ScientificName != "" {
			return species, nil
		}
		// Fall through to backfill the scientific name.
	}

	species, err := getOrCreateSpeciesTx(ctx, ds.DB, commonName, scientificName)
	if err != nil {
		return Species{}, err
	}

	ds.speciesCache.SetDefault(cacheKey, species)
	return species, nil
}

// getOrCreateSpeciesTx resolves a species identity against the given
// database handle, which may be a transaction so multi-step writes like
// RecordSighting stay atomic.
func getOrCreateSpeciesTx(ctx context.Context, tx *gorm.DB, commonName, scientificName string) (Species, error) {
	var species Species
	err := tx.WithContext(ctx).Where("common_name = ?", commonName).First(&species).Error
	if err == nil {
		if err := checkScientificName(&species, scientificName); err != nil {
			return Species{}, err
		}
		if species.ScientificName == "" && scientificName != "" {
			if err := tx.WithContext(ctx).Model(&species).Update("scientific_name", scientificName).Error; err != nil {
				return Species{}, dbError(err, "backfill-scientific-name", "common_name", commonName)
			}
		}
		return species, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Species{}, dbError(err, "lookup-species", "common_name", commonName)
	}

	species = Species{
		CommonName:     commonName,
		ScientificName: scientificName,
	}
	// The insert is conflict-tolerant: when another writer creates the row
	// first, the unique constraint decides and the winner's row is used.
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&species)
	if result.Error != nil {
		return Species{}, dbError(result.Error, "create-species", "common_name", commonName)
	}
	if result.RowsAffected == 0 {
		if err := tx.WithContext(ctx).Where("common_name = ?", commonName).First(&species).Error; err != nil {
			return Species{}, dbError(err, "lookup-species", "common_name", commonName)
		}
		if err := checkScientificName(&species, scientificName); err != nil {
			return Species{}, err
		}
	}

	return species, nil
}

// checkScientificName rejects a lookup whose scientific name conflicts with
// the stored row. Species rows are otherwise immutable.
func checkScientificName(species *Species, scientificName string) error {
	if scientificName != "" && species.ScientificName != "" &&
		!strings.EqualFold(species.ScientificName, scientificName) {
		return validationError("species already exists with a different scientific name",
			"scientific_name", scientificName)
	}
	return nil
}

func speciesCacheKey(commonName string) string {
	return "species:" + strings.ToLower(commonName)
}

// GetOrCreateCategory resolves a taxonomy grouping by name, creating it when
// absent. Same race handling as species.
func (ds *DataStore) GetOrCreateCategory(ctx context.Context, name string) (Category, error) {
	if strings.TrimSpace(name) == "" {
		return Category{}, validationError("category name must not be empty", "name", name)
	}
	return getOrCreateCategoryTx(ctx, ds.DB, name)
}

func getOrCreateCategoryTx(ctx context.Context, tx *gorm.DB, name string) (Category, error) {
	var category Category
	err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Category{}, dbError(err, "lookup-category", "name", name)
	}

	category = Category{Name: name}
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&category)
	if result.Error != nil {
		return Category{}, dbError(result.Error, "create-category", "name", name)
	}
	if result.RowsAffected == 0 {
		if err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
			return Category{}, dbError(err, "lookup-category", "name", name)
		}
	}
	return category, nil
}

// likeEscaper neutralizes LIKE pattern characters so user input matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchSpecies returns all species whose common name starts with the given
// prefix, ordered alphabetically. Used for interactive name completion.
func (ds *DataStore) SearchSpecies(ctx context.Context, prefix string) ([]Species, error) {
	var species []Species
	err := ds.DB.WithContext(ctx).
		Where(`common_name LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Order("common_name COLLATE NOCASE").
		Find(&species).Error
	if err != nil {
		return nil, dbError(err, "search-species", "prefix", prefix)
	}
	return species, nil
}
