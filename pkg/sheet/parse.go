package sheet

import (
	"strconv"
	"strings"
)

// currencyReplacer strips the currency symbols and thousands separators the
// source sheets are known to carry before numeric parsing.
var currencyReplacer = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	",", "",
	" ", "",
)

// Parse turns a grid into records using the given schema. Row 0 is the
// header row. Rows are dropped when the key cell is empty or the parsed
// cost equals SentinelUnpriced. A cost cell that fails to parse is kept as
// a nil cost rather than dropping the row.
func Parse(grid Grid, schema Schema) []Record {
	if len(grid) == 0 {
		return nil
	}

	layout := Resolve(grid[0], schema)

	records := make([]Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		sku := cell(row, layout.SKU)
		if sku == "" {
			continue
		}

		cost := ParseMoney(cell(row, layout.Cost))
		if cost != nil && *cost == SentinelUnpriced {
			continue
		}

		records = append(records, Record{
			SKU:         sku,
			DisplayName: cell(row, layout.DisplayName),
			Cost:        cost,
			Quantity:    ParseQuantity(cell(row, layout.Quantity)),
		})
	}

	return records
}

// ParseMoney parses a monetary cell after stripping currency symbols and
// thousands separators. Returns nil when the cell is empty or unparseable.
func ParseMoney(s string) *float64 {
	cleaned := currencyReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseQuantity parses an integer stock quantity cell.
// Returns nil when the cell is empty or unparseable.
func ParseQuantity(s string) *int {
	cleaned := currencyReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &v
}
