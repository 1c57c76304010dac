// Package sheet turns raw tabular rows from the source spreadsheets into
// typed records. Parsing is pure: malformed cells degrade to nil fields and
// never abort the parse. Rows are excluded only when the key column is empty
// or the cost carries the sentinel value meaning "intentionally unpriced".
package sheet

// Grid is a 2-D grid of string cells. Row 0 is the header row.
type Grid [][]string

// SentinelUnpriced marks a row whose cost is intentionally unset.
// Rows with this cost are dropped during parsing.
const SentinelUnpriced = -1

// Record is one parsed row from a source sheet. Immutable once parsed.
type Record struct {
	SKU         string
	DisplayName string
	Cost        *float64
	Quantity    *int
}

// Column describes how a header cell is located.
type Column struct {
	Name      string
	Substring bool // match by containing Name instead of equality
}

// Schema names the columns a source sheet is expected to carry.
// DisplayName and Quantity are optional; a zero Column is skipped.
type Schema struct {
	SKU         Column
	Cost        Column
	DisplayName Column
	Quantity    Column
}

// PrimarySchema matches the supplier master sheet. The product id column is
// located by substring because the supplier varies the exact header wording.
func PrimarySchema() Schema {
	return Schema{
		SKU:         Column{Name: "product id", Substring: true},
		Cost:        Column{Name: "cost"},
		DisplayName: Column{Name: "description"},
		Quantity:    Column{Name: "quantity"},
	}
}

// SecondarySchema matches the trade price sheet.
func SecondarySchema() Schema {
	return Schema{
		SKU:  Column{Name: "sku"},
		Cost: Column{Name: "trade price"},
	}
}
