package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q): %v", s, err)
	}
	return d
}

func stringCell(s string) workbook.Cell {
	return workbook.Cell{Kind: workbook.KindString, Raw: s}
}

func numberCell(n float64, raw string) workbook.Cell {
	return workbook.Cell{Kind: workbook.KindNumber, Number: n, Raw: raw}
}

func TestExtractTransactions(t *testing.T) {
	rows := []workbook.Row{
		{
			"naam":   stringCell("Willem"),
			"datum":  stringCell("2024-03-15"),
			"bedrag": numberCell(100, "100"),
			"type":   stringCell("Storting"),
		},
		{
			"name":        stringCell("Jan"),
			"date":        stringCell("2024-04-01"),
			"amount":      numberCell(50, "50"),
			"type":        stringCell("Opname"),
			"description": stringCell("cash out"),
		},
		{
			"naam":   stringCell("Willem"),
			"bedrag": numberCell(0, "0"),
		},
		{
			"naam":   stringCell("Willem"),
			"bedrag": numberCell(-25, "-25"),
		},
	}

	report := &Report{}
	txs := extractTransactions(rows, report)

	if len(txs) != 2 {
		t.Fatalf("extractTransactions returned %d transactions, want 2", len(txs))
	}
	if report.SkippedTransactions != 2 {
		t.Errorf("SkippedTransactions = %d, want 2 (zero and negative amounts)", report.SkippedTransactions)
	}

	first := txs[0]
	if first.UserName != "Willem" || first.Type != domain.TypeDeposit || !first.Amount.Equal(decimalFromString(t, "100")) {
		t.Errorf("first transaction = %+v, want Willem deposit of 100", first)
	}
	if first.Date.Year() != 2024 || first.Date.Month() != 3 || first.Date.Day() != 15 {
		t.Errorf("first transaction date = %s, want 2024-03-15", first.Date)
	}

	second := txs[1]
	if second.UserName != "Jan" || second.Type != domain.TypeWithdrawal || second.Description != "cash out" {
		t.Errorf("second transaction = %+v, want Jan withdrawal with description", second)
	}

	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Errorf("transaction ids not unique: %q, %q", first.ID, second.ID)
	}
}

func TestExtractTransactionsDefaults(t *testing.T) {
	rows := []workbook.Row{
		{"bedrag": numberCell(10, "10")},
	}

	report := &Report{}
	txs := extractTransactions(rows, report)

	if len(txs) != 1 {
		t.Fatalf("extractTransactions returned %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.UserName != "unknown-user" {
		t.Errorf("UserName = %q, want unknown-user for a nameless row", tx.UserName)
	}
	if tx.Type != domain.TypeDeposit {
		t.Errorf("Type = %q, want deposit when the type column is absent", tx.Type)
	}
	if !tx.DateDefaulted {
		t.Error("DateDefaulted = false, want true for a dateless row")
	}
	if report.DefaultedDates != 1 {
		t.Errorf("DefaultedDates = %d, want 1", report.DefaultedDates)
	}
}

func TestTransactionType(t *testing.T) {
	tests := []struct {
		value string
		want  domain.TransactionType
	}{
		{"Storting", domain.TypeDeposit},
		{"Opname", domain.TypeWithdrawal},
		{"maandelijkse opname", domain.TypeWithdrawal},
		{"Withdrawal", domain.TypeWithdrawal},
		{"Deposit", domain.TypeDeposit},
		{"", domain.TypeDeposit},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			row := workbook.Row{}
			if tt.value != "" {
				row["type"] = stringCell(tt.value)
			}
			if got := transactionType(row); got != tt.want {
				t.Errorf("transactionType(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
