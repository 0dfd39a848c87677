// Package importer turns loosely structured spreadsheet workbooks into
// normalized portfolio data: transactions from the deposits sheet,
// deduplicated holdings, and unpivoted per-user history snapshots.
package importer

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

// Report describes what one import did, including the tolerant defaults
// that would otherwise be invisible.
type Report struct {
	Transactions        int      `json:"transactions"`
	Holdings            int      `json:"holdings"`
	HistoryRecords      int      `json:"history_records"`
	SkippedTransactions int      `json:"skipped_transactions"`
	SkippedHoldings     int      `json:"skipped_holdings"`
	DefaultedDates      int      `json:"defaulted_dates"`
	Warnings            []string `json:"warnings,omitempty"`
}

// Importer parses workbooks. UserNames feeds the history unpivot; it is
// the display names of the known profiles.
type Importer struct {
	UserNames []string
	Log       zerolog.Logger
}

// Import parses a workbook from memory and reconciles it into portfolio
// data. The transform is a one-shot, in-memory pass: classify sheets,
// extract rows, deduplicate holdings, unpivot history. User matching
// happens later, at sync time, when profiles are available.
func (im *Importer) Import(data []byte) (*domain.PortfolioData, *Report, error) {
	wb, err := workbook.Open(data)
	if err != nil {
		return nil, nil, fmt.Errorf("Import: %w", err)
	}
	defer wb.Close()

	report := &Report{}
	names := wb.SheetNames()
	result := &domain.PortfolioData{}

	if sheet, ok := workbook.FindSheet(names, workbook.RoleDeposits); ok {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("Import: deposits: %w", err)
		}
		result.Transactions = extractTransactions(rows, report)
	}

	if sheet, ok := workbook.FindSheet(names, workbook.RoleHoldings); ok {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("Import: holdings: %w", err)
		}
		result.Holdings = DedupeHoldings(extractHoldings(rows, report))
	}

	if sheet, ok := workbook.FindSheet(names, workbook.RoleHistory); ok {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("Import: history: %w", err)
		}
		result.History = UnpivotHistory(rows, im.UserNames, report)
	}

	report.Transactions = len(result.Transactions)
	report.Holdings = len(result.Holdings)
	report.HistoryRecords = len(result.History)

	im.Log.Info().
		Int("transactions", report.Transactions).
		Int("holdings", report.Holdings).
		Int("history", report.HistoryRecords).
		Msg("Workbook import complete")

	return result, report, nil
}
