// checklist.go: checklist lifecycle and sighting write operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// OpenChecklist begins a new outing session at the named location. The
// location is resolved get-or-create inside the same transaction, so either
// both rows exist afterwards or neither does. Start times in the future are
// rejected.
func (ds *DataStore) OpenChecklist(ctx context.Context, locationName string, startTime time.Time) (Checklist, error) {
	if startTime.After(time.Now()) {
		return Checklist{}, validationError("start time is in the future", "start_time", startTime)
	}

	var checklist Checklist
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		location, err := getOrCreateLocationTx(ctx, tx, locationName)
		if err != nil {
			return err
		}

		checklist = Checklist{
			LocationID: location.ID,
			StartTime:  startTime,
		}
		if err := tx.WithContext(ctx).Omit("Location", "Sightings").Create(&checklist).Error; err != nil {
			return dbError(err, "open-checklist", "location", locationName)
		}
		checklist.Location = &location
		return nil
	})
	if err != nil {
		return Checklist{}, err
	}

	getLogger().InfoContext(ctx, "checklist opened",
		"checklist_id", checklist.ID,
		"location", locationName,
		"start_time", startTime)
	return checklist, nil
}

// CloseChecklist marks a checklist complete and freezes further sighting
// writes. Closing an already-closed checklist fails with a state error; an
// end time before the start time fails validation and leaves the checklist
// open.
func (ds *DataStore) CloseChecklist(ctx context.Context, checklistID uint, endTime time.Time) (Checklist, error) {
	var checklist Checklist
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).First(&checklist, checklistID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("checklist", checklistID)
			}
			return dbError(err, "lookup-checklist", "checklist_id", checklistID)
		}

		if err := checklist.CanClose(endTime); err != nil {
			return err
		}

		updates := map[string]any{
			"complete": true,
			"end_time": endTime,
		}
		if err := tx.WithContext(ctx).Model(&Checklist{}).
			Where("id = ?", checklist.ID).
			Updates(updates).Error; err != nil {
			return dbError(err, "close-checklist", "checklist_id", checklistID)
		}
		checklist.Complete = true
		checklist.EndTime = &endTime
		return nil
	})
	if err != nil {
		return Checklist{}, err
	}

	getLogger().InfoContext(ctx, "checklist closed",
		"checklist_id", checklist.ID,
		"end_time", endTime)
	return checklist, nil
}

// GetChecklist retrieves a checklist with its location and sightings.
func (ds *DataStore) GetChecklist(ctx context.Context, checklistID uint) (Checklist, error) {
	var checklist Checklist
	err := ds.DB.WithContext(ctx).
		Preload("Location").
		Preload("Sightings").
		Preload("Sightings.Species").
		First(&checklist, checklistID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Checklist{}, notFoundError("checklist", checklistID)
	}
	if err != nil {
		return Checklist{}, dbError(err, "get-checklist", "checklist_id", checklistID)
	}
	return checklist, nil
}

// GetChecklists retrieves the most recent checklists, newest first.
func (ds *DataStore) GetChecklists(ctx context.Context, limit int) ([]Checklist, error) {
	query := ds.DB.WithContext(ctx).
		Preload("Location").
		Order("start_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var checklists []Checklist
	if err := query.Find(&checklists).Error; err != nil {
		return nil, dbError(err, "get-checklists")
	}
	return checklists, nil
}

// RecordSighting resolves the species identity and attaches an observation
// to an open checklist in one transaction: either the species exists and the
// sighting row is written, or neither happens. Recording the same species
// twice within one checklist merges additively onto the existing row.
func (ds *DataStore) RecordSighting(ctx context.Context, checklistID uint, commonName string, count int, notes string, observedAt *time.Time) (Sighting, error) {
	sighting := Sighting{
		ChecklistID: checklistID,
		Count:       count,
		Notes:       notes,
		ObservedAt:  observedAt,
	}
	if err := sighting.Validate(); err != nil {
		return Sighting{}, err
	}

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var checklist Checklist
		if err := tx.WithContext(ctx).First(&checklist, checklistID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("checklist", checklistID)
			}
			return dbError(err, "lookup-checklist", "checklist_id", checklistID)
		}
		if err := checklist.CanAddSighting(); err != nil {
			return err
		}

		species, err := getOrCreateSpeciesTx(ctx, tx, commonName, "")
		if err != nil {
			return err
		}
		sighting.SpeciesID = species.ID

		// One row per (checklist, species): a duplicate observation adds
		// its count onto the existing row instead of inserting a second.
		assignments := map[string]any{
			"count": gorm.Expr("count + ?", count),
		}
		if notes != "" {
			assignments["notes"] = notes
		}
		err = tx.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checklist_id"}, {Name: "species_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Omit("Checklist", "Species").Create(&sighting).Error
		if err != nil {
			return dbError(err, "record-sighting",
				"checklist_id", checklistID,
				"species", commonName)
		}

		// Re-read the row so merged counts are reflected in the result.
		if err := tx.WithContext(ctx).
			Where("checklist_id = ? AND species_id = ?", checklistID, species.ID).
			First(&sighting).Error; err != nil {
			return dbError(err, "reload-sighting", "checklist_id", checklistID)
		}
		sighting.Species = &species
		return nil
	})
	if err != nil {
		return Sighting{}, err
	}

	getLogger().DebugContext(ctx, "sighting recorded",
		"checklist_id", checklistID,
		"species", commonName,
		"count", sighting.Count)
	return sighting, nil
}

// CountSightings returns the number of sighting rows in a checklist.
func (ds *DataStore) CountSightings(ctx context.Context, checklistID uint) (int64, error) {
	var count int64
	err := ds.DB.WithContext(ctx).
		Model(&Sighting{}).
		Where("checklist_id = ?", checklistID).
		Count(&count).Error
	if err != nil {
		return 0, dbError(err, "count-sightings", "checklist_id", checklistID)
	}
	return count, nil
}
