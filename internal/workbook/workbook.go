package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps an opened spreadsheet file.
type Workbook struct {
	file *excelize.File
}

// Open reads a workbook from memory.
func Open(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Open: reading workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows reads a sheet into normalized rows. The first row is the header;
// headers are normalized with NormalizeKey, later duplicate headers win.
// Cells are read raw, so spreadsheet serial dates arrive as numbers and
// flow through date coercion the same way the source files encode them.
func (w *Workbook) Rows(sheet string) ([]Row, error) {
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("Rows: reading sheet %q: %w", sheet, err)
	}
	if len(raw) < 2 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = NormalizeKey(h)
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, line := range raw[1:] {
		row := make(Row, len(headers))
		empty := true
		for i, key := range headers {
			if key == "" || i >= len(line) {
				continue
			}
			cell := parseCell(line[i])
			if cell.Blank() {
				continue
			}
			row[key] = cell
			empty = false
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func parseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: KindNumber, Number: n, Raw: trimmed}
	}
	return Cell{Kind: KindString, Raw: trimmed}
}
