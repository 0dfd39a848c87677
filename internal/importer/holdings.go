package importer

import (
	"strings"

	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/workbook"
)

// placeholderSymbol marks a holding row without a usable symbol; such
// rows are filtered before deduplication.
const placeholderSymbol = "???"

var (
	symbolAliases      = []string{"symbol", "ticker", "munt"}
	holdingNameAliases = []string{"name", "naam"}
	qtyAliases         = []string{"amount", "aantal"}
	priceAliases       = []string{"price"}
)

// extractHoldings maps normalized holdings rows to holdings, dropping
// rows without a symbol or with a non-positive amount.
func extractHoldings(rows []workbook.Row, report *Report) []domain.Holding {
	holdings := make([]domain.Holding, 0, len(rows))
	for _, row := range rows {
		symbol := placeholderSymbol
		if c, ok := row.Get(symbolAliases...); ok {
			symbol = strings.ToUpper(strings.TrimSpace(c.AsString()))
		}
		amount := workbook.Cell{}
		if c, ok := row.Get(qtyAliases...); ok {
			amount = c
		}
		qty := amount.AsDecimal()
		if symbol == placeholderSymbol || symbol == "" || !qty.IsPositive() {
			report.SkippedHoldings++
			continue
		}

		h := domain.Holding{Symbol: symbol, Amount: qty}
		if c, ok := row.Get(holdingNameAliases...); ok {
			h.Name = strings.TrimSpace(c.AsString())
		}
		if c, ok := row.Get(priceAliases...); ok {
			h.CurrentPrice = c.AsDecimal()
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// DedupeHoldings merges repeated symbol entries. The key is the
// uppercase-trimmed symbol; the first occurrence seeds the entry and
// later occurrences only accumulate amount, so name and price are
// first-seen-wins. Order of first appearance is preserved.
func DedupeHoldings(holdings []domain.Holding) []domain.Holding {
	index := make(map[string]int, len(holdings))
	out := make([]domain.Holding, 0, len(holdings))
	for _, h := range holdings {
		key := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if i, seen := index[key]; seen {
			out[i].Amount = out[i].Amount.Add(h.Amount)
			continue
		}
		h.Symbol = key
		index[key] = len(out)
		out = append(out, h)
	}
	return out
}
