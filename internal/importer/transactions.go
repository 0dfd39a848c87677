package importer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

// Header aliases accepted on the deposits sheet. The source files mix
// Dutch and English column names.
var (
	nameAliases        = []string{"naam", "name"}
	dateAliases        = []string{"datum", "date"}
	amountAliases      = []string{"bedrag", "amount"}
	typeAliases        = []string{"type"}
	descriptionAliases = []string{"omschrijving", "description"}
)

// extractTransactions maps normalized deposit rows to transactions. Rows
// with a non-positive amount are dropped silently; they are blank or
// placeholder lines, not errors. Each surviving transaction gets a fresh
// id.
func extractTransactions(rows []workbook.Row, report *Report) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		amountCell, _ := row.Get(amountAliases...)
		amount := amountCell.AsDecimal()
		if !amount.IsPositive() {
			report.SkippedTransactions++
			continue
		}

		dateCell, _ := row.Get(dateAliases...)
		date, defaulted := CoerceDate(dateCell)
		if defaulted {
			report.DefaultedDates++
		}

		userName := "unknown-user"
		if c, ok := row.Get(nameAliases...); ok {
			userName = strings.TrimSpace(c.AsString())
		}

		description := ""
		if c, ok := row.Get(descriptionAliases...); ok {
			description = strings.TrimSpace(c.AsString())
		}

		txs = append(txs, domain.Transaction{
			ID:            uuid.NewString(),
			UserName:      userName,
			Date:          date,
			Type:          transactionType(row),
			Amount:        amount,
			Description:   description,
			DateDefaulted: defaulted,
		})
	}
	return txs
}

// transactionType derives deposit/withdrawal from the free-text type
// column. Anything mentioning "opname" or "withdrawal" is a withdrawal;
// everything else, including a missing column, is a deposit.
func transactionType(row workbook.Row) domain.TransactionType {
	c, ok := row.Get(typeAliases...)
	if !ok {
		return domain.TypeDeposit
	}
	lower := strings.ToLower(c.AsString())
	if strings.Contains(lower, "opname") || strings.Contains(lower, "withdrawal") {
		return domain.TypeWithdrawal
	}
	return domain.TypeDeposit
}
