package workbook

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tags the scalar stored in a Cell. Spreadsheet rows have no
// fixed schema, so every field access goes through this small union.
type CellKind int

const (
	// KindBlank marks an absent or empty cell.
	KindBlank CellKind = iota
	// KindNumber marks a numeric cell. Raw holds the exact source text.
	KindNumber
	// KindString marks a textual cell.
	KindString
	// KindTime marks a cell that carried a native date value.
	KindTime
)

// Cell is one spreadsheet value.
type Cell struct {
	Kind   CellKind
	Number float64
	Raw    string
	Time   time.Time
}

// Blank reports whether the cell is absent or empty.
func (c Cell) Blank() bool { return c.Kind == KindBlank }

// AsString renders the cell as text. Numbers come back as their raw
// source text, blanks as the empty string.
func (c Cell) AsString() string {
	switch c.Kind {
	case KindString:
		return c.Raw
	case KindNumber:
		return c.Raw
	case KindTime:
		return c.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsDecimal coerces the cell to a decimal quantity. Anything that does
// not parse as a number yields zero, matching the tolerant defaults of
// the import: a bad amount is treated as a blank row, not an error.
func (c Cell) AsDecimal() decimal.Decimal {
	switch c.Kind {
	case KindNumber:
		if d, err := decimal.NewFromString(c.Raw); err == nil {
			return d
		}
		return decimal.NewFromFloat(c.Number)
	case KindString:
		s := strings.TrimSpace(strings.ReplaceAll(c.Raw, ",", "."))
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Row is one spreadsheet row keyed by normalized column header.
type Row map[string]Cell

// Get returns the first non-blank cell among the given header aliases.
func (r Row) Get(aliases ...string) (Cell, bool) {
	for _, a := range aliases {
		if c, ok := r[a]; ok && !c.Blank() {
			return c, true
		}
	}
	return Cell{}, false
}

// NormalizeKey lower-cases a column header and trims surrounding
// whitespace so lookups are case and whitespace insensitive.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NormalizeRow returns a new row with every key normalized and values
// passed through unchanged. Two headers normalizing to the same key
// collide; the later write wins, which is accepted for these inputs.
func NormalizeRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[NormalizeKey(k)] = v
	}
	return out
}
