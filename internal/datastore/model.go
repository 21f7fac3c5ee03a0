// model.go: this code defines the data model for the application
package datastore

import "time"

// Species represents a single taxonomic identity. Rows are created lazily on
// first reference and never removed, so historical sightings always resolve.
type Species struct {
	ID             uint      `gorm:"primaryKey"`
	CommonName     string    `gorm:"type:TEXT COLLATE NOCASE;uniqueIndex:idx_species_common_name;not null"`
	ScientificName string    `gorm:"index:idx_species_sciname"`
	CategoryID     *uint     `gorm:"index"`
	Category       *Category `gorm:"foreignKey:CategoryID"`
	CreatedAt      time.Time
}

// Category is a non-scientific grouping for species, populated from the
// eBird taxonomy (e.g. "Waterfowl").
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:TEXT COLLATE NOCASE;uniqueIndex:idx_category_name;not null"`
	CreatedAt time.Time
}

// Location is a named birding site. Identity is the case-insensitively
// unique name; coordinates are stored but never computed on.
type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:TEXT COLLATE NOCASE;uniqueIndex:idx_location_name;not null"`
	Notes     string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

// Checklist is one outing session at a location. Checklists are append-only
// history: they are opened, amended with sightings, closed, never deleted.
type Checklist struct {
	ID         uint       `gorm:"primaryKey"`
	LocationID uint       `gorm:"index;not null"`
	Location   *Location  `gorm:"foreignKey:LocationID"`
	StartTime  time.Time  `gorm:"index;not null"`
	EndTime    *time.Time
	Complete   bool       `gorm:"not null;default:false"`
	Sightings  []Sighting `gorm:"foreignKey:ChecklistID"`
	CreatedAt  time.Time
}

// IsClosed reports whether the checklist has been completed. A closed
// checklist is read-only.
func (c *Checklist) IsClosed() bool {
	return c.Complete
}

// CanAddSighting returns a state error when the checklist no longer accepts
// sightings.
func (c *Checklist) CanAddSighting() error {
	if c.IsClosed() {
		return stateError("checklist is closed", "add-sighting", "checklist_id", c.ID)
	}
	return nil
}

// CanClose validates a close request against the checklist's current state.
func (c *Checklist) CanClose(endTime time.Time) error {
	if c.IsClosed() {
		return stateError("checklist is already closed", "close-checklist", "checklist_id", c.ID)
	}
	if endTime.Before(c.StartTime) {
		return validationError("end time is before start time", "end_time", endTime)
	}
	return nil
}

// Sighting is one observation of a species within a checklist. The composite
// unique index enforces one row per (checklist, species); duplicate
// observations merge additively onto the existing row.
type Sighting struct {
	ID          uint       `gorm:"primaryKey"`
	ChecklistID uint       `gorm:"not null;uniqueIndex:idx_sighting_checklist_species"`
	SpeciesID   uint       `gorm:"not null;uniqueIndex:idx_sighting_checklist_species;index"`
	Checklist   *Checklist `gorm:"foreignKey:ChecklistID"`
	Species     *Species   `gorm:"foreignKey:SpeciesID"`
	Count       int        `gorm:"not null;check:count > 0"`
	Notes       string
	ObservedAt  *time.Time
	CreatedAt   time.Time
}

// Validate checks the domain rules for a sighting before it reaches storage.
// The database CHECK constraint on count is the last line of defense.
func (s *Sighting) Validate() error {
	if s.Count <= 0 {
		return validationError("count must be a positive integer", "count", s.Count)
	}
	return nil
}

// ReferenceList is a named target list of species (for example a regional
// list) that outing checklists can be diffed against.
type ReferenceList struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:TEXT COLLATE NOCASE;uniqueIndex:idx_reference_list_name;not null"`
	Species   []Species `gorm:"many2many:reference_list_species"`
	CreatedAt time.Time
}
