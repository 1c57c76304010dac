// Package reconcile joins records from the two source sheets by SKU,
// producing one merged view per key. Duplicates within a source are
// resolved first-occurrence-wins in input order; keys lacking a priced
// match on both sides are excluded rather than merged with a null side.
package reconcile

import (
	"github.com/jumpingbeanltd/price-dashboard/pkg/sheet"
)

// Merged is the reconciled view of one SKU across both sources.
// Both costs are always present; records that cannot satisfy that are
// never emitted.
type Merged struct {
	SKU           string
	DisplayName   string
	PrimaryCost   float64
	SecondaryCost float64
	Quantity      *int
}

// Merge joins the deduplicated primary records against the secondary
// records by SKU. Output preserves the primary list's input order and
// contains no duplicate keys.
func Merge(primary, secondary []sheet.Record) []Merged {
	secondaryBySKU := make(map[string]sheet.Record, len(secondary))
	for _, rec := range secondary {
		if _, seen := secondaryBySKU[rec.SKU]; !seen {
			secondaryBySKU[rec.SKU] = rec
		}
	}

	merged := make([]Merged, 0, len(primary))
	seen := make(map[string]bool, len(primary))

	for _, rec := range primary {
		if seen[rec.SKU] {
			continue
		}
		seen[rec.SKU] = true

		match, ok := secondaryBySKU[rec.SKU]
		if !ok || rec.Cost == nil || match.Cost == nil {
			continue
		}

		merged = append(merged, Merged{
			SKU:           rec.SKU,
			DisplayName:   rec.DisplayName,
			PrimaryCost:   *rec.Cost,
			SecondaryCost: *match.Cost,
			Quantity:      rec.Quantity,
		})
	}

	return merged
}

// Keys returns the SKUs of a record list in input order, deduplicated
// first-occurrence-wins.
func Keys(records []sheet.Record) []string {
	keys := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if !seen[rec.SKU] {
			seen[rec.SKU] = true
			keys = append(keys, rec.SKU)
		}
	}
	return keys
}
