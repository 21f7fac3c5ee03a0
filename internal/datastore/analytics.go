// internal/datastore/analytics.go
package datastore

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// LifeListEntry is one species on the user's life list: every species ever
// seen, with the date of the first sighting and the count across all
// checklists.
type LifeListEntry struct {
	CommonName     string
	ScientificName string
	FirstSeen      time.Time
	TotalCount     int
}

// SpeciesTotal is a per-species count aggregate.
type SpeciesTotal struct {
	CommonName     string
	ScientificName string
	TotalCount     int
}

// ChecklistDiff is the result of comparing a checklist against a reference
// species list.
type ChecklistDiff struct {
	Seen    []string // species present in the checklist
	Missing []string // reference species not present in the checklist
}

// CategoryCompletion is one category's slice of a grouped checklist diff.
type CategoryCompletion struct {
	Category string
	Seen     []string
	Missing  []string
}

// Completion returns the fraction of the category's reference species that
// were seen, in [0, 1].
func (c *CategoryCompletion) Completion() float64 {
	total := len(c.Seen) + len(c.Missing)
	if total == 0 {
		return 0
	}
	return float64(len(c.Seen)) / float64(total)
}

// GroupedChecklistDiff is a checklist diff grouped by taxonomy category.
type GroupedChecklistDiff struct {
	Categories []CategoryCompletion
}

// Completion returns the overall fraction of reference species seen.
func (d *GroupedChecklistDiff) Completion() float64 {
	var seen, total int
	for i := range d.Categories {
		seen += len(d.Categories[i].Seen)
		total += len(d.Categories[i].Seen) + len(d.Categories[i].Missing)
	}
	if total == 0 {
		return 0
	}
	return float64(seen) / float64(total)
}

// LifeList returns every species ever sighted, ordered by the start time of
// the first checklist it appeared on, earliest first.
func (ds *DataStore) LifeList(ctx context.Context) ([]LifeListEntry, error) {
	// The first-seen timestamp is taken through strftime so SQLite compares
	// and returns it as an integer instead of the stored text form.
	query := `
		SELECT
			species.common_name,
			species.scientific_name,
			CAST(strftime('%s', MIN(checklists.start_time)) AS INTEGER) AS first_seen_unix,
			SUM(sightings.count) AS total_count
		FROM sightings
		JOIN checklists ON checklists.id = sightings.checklist_id
		JOIN species ON species.id = sightings.species_id
		GROUP BY species.id
		ORDER BY first_seen_unix, species.common_name COLLATE NOCASE
	`

	rows, err := ds.DB.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, dbError(err, "life-list")
	}
	defer func() { _ = rows.Close() }()

	var entries []LifeListEntry
	for rows.Next() {
		var entry LifeListEntry
		var firstSeenUnix int64

		if err := rows.Scan(&entry.CommonName, &entry.ScientificName, &firstSeenUnix, &entry.TotalCount); err != nil {
			return nil, dbError(err, "life-list-scan")
		}
		entry.FirstSeen = time.Unix(firstSeenUnix, 0)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "life-list")
	}

	return entries, nil
}

// ChecklistSummary returns per-species totals within one checklist, ordered
// by common name.
func (ds *DataStore) ChecklistSummary(ctx context.Context, checklistID uint) ([]SpeciesTotal, error) {
	if _, err := ds.requireChecklist(ctx, checklistID); err != nil {
		return nil, err
	}

	var totals []SpeciesTotal
	err := ds.DB.WithContext(ctx).
		Table("sightings").
		Select("species.common_name, species.scientific_name, SUM(sightings.count) AS total_count").
		Joins("JOIN species ON species.id = sightings.species_id").
		Where("sightings.checklist_id = ?", checklistID).
		Group("species.id").
		Order("species.common_name COLLATE NOCASE").
		Scan(&totals).Error
	if err != nil {
		return nil, dbError(err, "checklist-summary", "checklist_id", checklistID)
	}
	return totals, nil
}

// LocationTotals aggregates per-species counts across every checklist at the
// named location.
func (ds *DataStore) LocationTotals(ctx context.Context, locationName string) ([]SpeciesTotal, error) {
	location, err := getLocationTx(ctx, ds.DB, locationName)
	if err != nil {
		return nil, err
	}

	var totals []SpeciesTotal
	err = ds.DB.WithContext(ctx).
		Table("sightings").
		Select("species.common_name, species.scientific_name, SUM(sightings.count) AS total_count").
		Joins("JOIN species ON species.id = sightings.species_id").
		Joins("JOIN checklists ON checklists.id = sightings.checklist_id").
		Where("checklists.location_id = ?", location.ID).
		Group("species.id").
		Order("species.common_name COLLATE NOCASE").
		Scan(&totals).Error
	if err != nil {
		return nil, dbError(err, "location-totals", "location", locationName)
	}
	return totals, nil
}

// DiffAgainstReference compares a checklist against an ad-hoc reference
// species list. Seen holds the species present in the checklist; Missing
// holds reference species the checklist lacks. Comparison is
// case-insensitive; results carry the canonical stored names and are sorted.
func (ds *DataStore) DiffAgainstReference(ctx context.Context, checklistID uint, referenceNames []string) (ChecklistDiff, error) {
	seen, err := ds.checklistSpeciesNames(ctx, checklistID)
	if err != nil {
		return ChecklistDiff{}, err
	}

	seenSet := make(map[string]struct{}, len(seen))
	for _, name := range seen {
		seenSet[strings.ToLower(name)] = struct{}{}
	}

	var missing []string
	dedup := make(map[string]struct{}, len(referenceNames))
	for _, name := range referenceNames {
		key := strings.ToLower(name)
		if _, dup := dedup[key]; dup {
			continue
		}
		dedup[key] = struct{}{}
		if _, ok := seenSet[key]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	return ChecklistDiff{Seen: seen, Missing: missing}, nil
}

// DiffAgainstReferenceList is DiffAgainstReference with the reference
// resolved from a stored named list.
func (ds *DataStore) DiffAgainstReferenceList(ctx context.Context, checklistID uint, listName string) (ChecklistDiff, error) {
	list, err := ds.GetReferenceList(ctx, listName)
	if err != nil {
		return ChecklistDiff{}, err
	}

	names := make([]string, 0, len(list.Species))
	for i := range list.Species {
		names = append(names, list.Species[i].CommonName)
	}
	return ds.DiffAgainstReference(ctx, checklistID, names)
}

// uncategorizedGroup collects reference species that carry no taxonomy
// category in a grouped diff.
const uncategorizedGroup = "Uncategorized"

// DiffAgainstReferenceListByCategory diffs a checklist against a stored
// reference list, grouped by the taxonomy category of the reference species.
// Each group carries its own completion fraction; the diff carries the
// overall one. Species without a category fall into an "Uncategorized"
// group. Groups are ordered by name, names within a group alphabetically.
func (ds *DataStore) DiffAgainstReferenceListByCategory(ctx context.Context, checklistID uint, listName string) (GroupedChecklistDiff, error) {
	list, err := ds.GetReferenceList(ctx, listName)
	if err != nil {
		return GroupedChecklistDiff{}, err
	}

	seen, err := ds.checklistSpeciesNames(ctx, checklistID)
	if err != nil {
		return GroupedChecklistDiff{}, err
	}
	seenSet := make(map[string]struct{}, len(seen))
	for _, name := range seen {
		seenSet[strings.ToLower(name)] = struct{}{}
	}

	buckets := make(map[string]*CategoryCompletion)
	dedup := make(map[string]struct{}, len(list.Species))
	for i := range list.Species {
		species := &list.Species[i]
		key := strings.ToLower(species.CommonName)
		if _, dup := dedup[key]; dup {
			continue
		}
		dedup[key] = struct{}{}

		group := uncategorizedGroup
		if species.Category != nil {
			group = species.Category.Name
		}
		bucket := buckets[group]
		if bucket == nil {
			bucket = &CategoryCompletion{Category: group}
			buckets[group] = bucket
		}
		if _, ok := seenSet[key]; ok {
			bucket.Seen = append(bucket.Seen, species.CommonName)
		} else {
			bucket.Missing = append(bucket.Missing, species.CommonName)
		}
	}

	groups := make([]string, 0, len(buckets))
	for group := range buckets {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	diff := GroupedChecklistDiff{Categories: make([]CategoryCompletion, 0, len(groups))}
	for _, group := range groups {
		bucket := buckets[group]
		sort.Strings(bucket.Seen)
		sort.Strings(bucket.Missing)
		diff.Categories = append(diff.Categories, *bucket)
	}
	return diff, nil
}

// checklistSpeciesNames returns the sorted common names of all species
// sighted on a checklist.
func (ds *DataStore) checklistSpeciesNames(ctx context.Context, checklistID uint) ([]string, error) {
	if _, err := ds.requireChecklist(ctx, checklistID); err != nil {
		return nil, err
	}

	var names []string
	err := ds.DB.WithContext(ctx).
		Table("sightings").
		Joins("JOIN species ON species.id = sightings.species_id").
		Where("sightings.checklist_id = ?", checklistID).
		Order("species.common_name COLLATE NOCASE").
		Pluck("species.common_name", &names).Error
	if err != nil {
		return nil, dbError(err, "checklist-species", "checklist_id", checklistID)
	}
	return names, nil
}

// requireChecklist verifies the checklist exists before running reads that
// would otherwise silently return empty results.
func (ds *DataStore) requireChecklist(ctx context.Context, checklistID uint) (Checklist, error) {
	var checklist Checklist
	err := ds.DB.WithContext(ctx).First(&checklist, checklistID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Checklist{}, notFoundError("checklist", checklistID)
	}
	if err != nil {
		return Checklist{}, dbError(err, "lookup-checklist", "checklist_id", checklistID)
	}
	return checklist, nil
}
