// location.go: get-or-create operations for birding site identities
package datastore

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// GetOrCreateLocation looks a location up by its case-insensitively unique
// name and creates it when absent.
func (ds *DataStore) GetOrCreateLocation(ctx context.Context, name string) (Location, error) {
	if strings.TrimSpace(name) == "" {
		return Location{}, validationError("location name must not be empty", "name", name)
	}
	return getOrCreateLocationTx(ctx, ds.DB, name)
}

func getOrCreateLocationTx(ctx context.Context, tx *gorm.DB, name string) (Location, error) {
	var location Location
	err := tx.WithContext(ctx).Where("name = ?", name).First(&location).Error
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Location{}, dbError(err, "lookup-location", "name", name)
	}

	location = Location{Name: name}
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&location)
	if result.Error != nil {
		return Location{}, dbError(result.Error, "create-location", "name", name)
	}
	if result.RowsAffected == 0 {
		if err := tx.WithContext(ctx).Where("name = ?", name).First(&location).Error; err != nil {
			return Location{}, dbError(err, "lookup-location", "name", name)
		}
	}
	return location, nil
}

// getLocationTx resolves an existing location without creating one.
func getLocationTx(ctx context.Context, tx *gorm.DB, name string) (Location, error) {
	var location Location
	err := tx.WithContext(ctx).Where("name = ?", name).First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Location{}, notFoundError("location", name)
	}
	if err != nil {
		return Location{}, dbError(err, "lookup-location", "name", name)
	}
	return location, nil
}
