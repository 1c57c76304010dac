package sheet

import (
	"strings"
)

// Layout is the result of resolving a Schema against a header row. Each
// field holds the zero-based column index, or -1 when the column was not
// found. A missing column is a degraded mode, not a hard failure: rows read
// empty cells for that field.
type Layout struct {
	SKU         int
	Cost        int
	DisplayName int
	Quantity    int
}

// Resolve maps a schema onto a header row by case-insensitive match.
// Columns with Substring set match any header containing the name;
// all others require equality after trimming.
func Resolve(header []string, schema Schema) Layout {
	return Layout{
		SKU:         locate(header, schema.SKU),
		Cost:        locate(header, schema.Cost),
		DisplayName: locate(header, schema.DisplayName),
		Quantity:    locate(header, schema.Quantity),
	}
}

// Missing returns the names of required columns that were not found.
// Only SKU and Cost are required; the rest degrade silently.
func (l Layout) Missing(schema Schema) []string {
	var missing []string
	if l.SKU < 0 {
		missing = append(missing, schema.SKU.Name)
	}
	if l.Cost < 0 {
		missing = append(missing, schema.Cost.Name)
	}
	return missing
}

// locate finds the index of a column in the header row, or -1.
func locate(header []string, col Column) int {
	if col.Name == "" {
		return -1
	}
	want := strings.ToLower(col.Name)
	for i, cell := range header {
		have := strings.ToLower(strings.TrimSpace(cell))
		if col.Substring {
			if strings.Contains(have, want) {
				return i
			}
		} else if have == want {
			return i
		}
	}
	return -1
}

// cell returns the trimmed cell at idx, or "" when the index is out of
// range or -1 (unresolved column).
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
