package importer

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

// UnpivotHistory explodes wide snapshot rows (one value/invested column
// pair per user) into one record per (date, user) pair that has data.
//
// Column lookups try the full normalized name and its first token, in
// both "value_willem" and "willem_value" conventions, preferring the
// full-name form. A user absent from every column of a row produces no
// record; when only one of value/invested is present the other defaults
// to zero.
func UnpivotHistory(rows []workbook.Row, userNames []string, report *Report) []domain.HistoryRecord {
	records := make([]domain.HistoryRecord, 0, len(rows)*len(userNames))
	for _, row := range rows {
		dateCell, _ := row.Get(dateAliases...)
		date, defaulted := CoerceDate(dateCell)
		if defaulted {
			report.DefaultedDates++
		}

		for _, name := range userNames {
			value, haveValue := userField(row, name, "value")
			invested, haveInvested := userField(row, name, "invested")
			if !haveValue && !haveInvested {
				continue
			}
			records = append(records, domain.HistoryRecord{
				Date:     date,
				UserName: name,
				Value:    value,
				Invested: invested,
			})
		}
	}
	return records
}

func userField(row workbook.Row, userName, field string) (decimal.Decimal, bool) {
	full := workbook.NormalizeKey(userName)
	candidates := []string{field + "_" + full, full + "_" + field}
	if first, _, found := strings.Cut(full, " "); found {
		candidates = append(candidates, field+"_"+first, first+"_"+field)
	}
	if c, ok := row.Get(candidates...); ok {
		return c.AsDecimal(), true
	}
	return decimal.Zero, false
}
