// reference.go: named reference species lists (regional or target lists)
package datastore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// CreateReferenceList stores a named species list. Species are resolved
// get-or-create inside the same transaction; a failure leaves neither the
// list nor any join row behind.
func (ds *DataStore) CreateReferenceList(ctx context.Context, name string, speciesNames []string) (ReferenceList, error) {
	if strings.TrimSpace(name) == "" {
		return ReferenceList{}, validationError("reference list name must not be empty", "name", name)
	}

	var list ReferenceList
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).Where("name = ?", name).First(&list).Error
		if err == nil {
			return errors.Newf("reference list %q already exists", name).
				Component("datastore").
				Category(errors.CategoryConflict).
				Context("name", name).
				Build()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dbError(err, "lookup-reference-list", "name", name)
		}

		list = ReferenceList{Name: name}
		if err := tx.WithContext(ctx).Omit("Species").Create(&list).Error; err != nil {
			return dbError(err, "create-reference-list", "name", name)
		}

		for _, speciesName := range speciesNames {
			species, err := getOrCreateSpeciesTx(ctx, tx, speciesName, "")
			if err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Model(&list).Association("Species").Append(&species); err != nil {
				return dbError(err, "append-reference-species",
					"list", name,
					"species", speciesName)
			}
		}
		return nil
	})
	if err != nil {
		return ReferenceList{}, err
	}
	return list, nil
}

// GetReferenceList retrieves a stored list and its species by name.
func (ds *DataStore) GetReferenceList(ctx context.Context, name string) (ReferenceList, error) {
	var list ReferenceList
	err := ds.DB.WithContext(ctx).
		Preload("Species.Category").
		Where("name = ?", name).
		First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReferenceList{}, notFoundError("reference list", name)
	}
	if err != nil {
		return ReferenceList{}, dbError(err, "get-reference-list", "name", name)
	}
	return list, nil
}

// GetReferenceLists retrieves all stored lists, ordered by name.
func (ds *DataStore) GetReferenceLists(ctx context.Context) ([]ReferenceList, error) {
	var lists []ReferenceList
	err := ds.DB.WithContext(ctx).
		Order("name COLLATE NOCASE").
		Find(&lists).Error
	if err != nil {
		return nil, dbError(err, "get-reference-lists")
	}
	return lists, nil
}
