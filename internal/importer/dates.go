package importer

import (
	"time"

	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

// Spreadsheet serial dates count days from this epoch, so serial 1 is
// 1899-12-31.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2006/01/02",
}

// CoerceDate converts a heterogeneous date cell into a UTC timestamp.
// Numbers are day offsets from the 1899-12-30 epoch, native date values
// pass through, strings are tried against a set of layouts. A blank or
// unparseable cell falls back to the current time; the defaulted flag
// makes that substitution visible to callers instead of masking
// malformed input as "now".
func CoerceDate(c workbook.Cell) (t time.Time, defaulted bool) {
	switch c.Kind {
	case workbook.KindNumber:
		days := time.Duration(c.Number * float64(24*time.Hour))
		return serialEpoch.Add(days), false
	case workbook.KindTime:
		return c.Time.UTC(), false
	case workbook.KindString:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, c.Raw); err == nil {
				return parsed.UTC(), false
			}
		}
	}
	return time.Now().UTC(), true
}
