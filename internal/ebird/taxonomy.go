// Package ebird parses the eBird taxonomy export used to seed the species
// and category tables.
package ebird

import (
	"encoding/csv"
	"io"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// Column indices in the eBird taxonomy CSV
// (TAXON_ORDER, CATEGORY, SPECIES_CODE, PRIMARY_COM_NAME, SCI_NAME, ORDER1,
// FAMILY, SPECIES_GROUP, ...).
const (
	colCategory      = 1
	colCommonName    = 3
	colScientific    = 4
	colSpeciesGroup  = 7
	minRecordColumns = 8
)

// TaxonomyEntry is one species row from the eBird taxonomy.
type TaxonomyEntry struct {
	CommonName     string
	ScientificName string
	SpeciesGroup   string
}

// ParseTaxonomy reads the eBird taxonomy CSV and returns its species rows.
// Non-species rows (hybrids, subspecies, spuhs) are skipped, which also
// implicitly drops the header line.
func ParseTaxonomy(r io.Reader) ([]TaxonomyEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []TaxonomyEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(err).
				Component("ebird").
				Category(errors.CategoryFileParsing).
				Context("operation", "parse-taxonomy").
				Build()
		}

		if len(record) < minRecordColumns || record[colCategory] != "species" {
			continue
		}
		if record[colCommonName] == "" {
			continue
		}

		entries = append(entries, TaxonomyEntry{
			CommonName:     record[colCommonName],
			ScientificName: record[colScientific],
			SpeciesGroup:   record[colSpeciesGroup],
		})
	}

	return entries, nil
}
