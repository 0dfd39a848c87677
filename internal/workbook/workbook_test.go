package workbook

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, cells [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	for r, line := range cells {
		for c, value := range line {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetCellValue(sheet, cellName, value); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestOpenInvalidData(t *testing.T) {
	if _, err := Open([]byte("not a workbook")); err == nil {
		t.Error("Expected error opening garbage data, got nil")
	}
}

func TestRows(t *testing.T) {
	data := buildWorkbook(t, "Stortingen", [][]interface{}{
		{" Naam ", "Bedrag", "Type"},
		{"Willem", 100.5, "Storting"},
		{"", "", ""},
		{"Jan", "250", "Opname"},
	})

	wb, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	names := wb.SheetNames()
	if len(names) != 1 || names[0] != "Stortingen" {
		t.Errorf("SheetNames() = %v, want [Stortingen]", names)
	}

	rows, err := wb.Rows("Stortingen")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Rows returned %d rows, want 2 (empty row skipped)", len(rows))
	}

	first := rows[0]
	if c, ok := first.Get("naam"); !ok || c.AsString() != "Willem" {
		t.Errorf("row 0 naam = %v, want Willem", c)
	}
	if c, ok := first.Get("bedrag"); !ok || c.Kind != KindNumber || c.Number != 100.5 {
		t.Errorf("row 0 bedrag = %+v, want numeric 100.5", c)
	}

	second := rows[1]
	if c, ok := second.Get("type"); !ok || c.AsString() != "Opname" {
		t.Errorf("row 1 type = %v, want Opname", c)
	}
	if c, ok := second.Get("bedrag"); !ok || c.Kind != KindNumber || c.Number != 250 {
		t.Errorf("row 1 bedrag = %+v, want numeric 250", c)
	}
}

func TestRowsHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, "Holdings", [][]interface{}{
		{"Symbol", "Amount"},
	})

	wb, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	rows, err := wb.Rows("Holdings")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Rows returned %d rows for a header-only sheet, want 0", len(rows))
	}
}
