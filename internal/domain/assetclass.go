package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AssetClass buckets holdings for the dashboard: cash & stablecoins,
// gold-backed tokens, and everything else as crypto.
type AssetClass string

const (
	ClassCash   AssetClass = "cash"
	ClassGold   AssetClass = "gold"
	ClassCrypto AssetClass = "crypto"
)

// Default class membership. Crypto is the complement, not a set.
var (
	DefaultCashAssets = []string{"EUR", "USD", "USDT", "USDC", "DAI"}
	DefaultGoldAssets = []string{"PAXG"}
)

// Classifier assigns holdings to asset classes by symbol. The sets are
// plain lookup tables injected at construction so a deployment can extend
// them without a code change.
type Classifier struct {
	cash map[string]bool
	gold map[string]bool
}

// NewClassifier creates a classifier with the default cash and gold sets.
func NewClassifier() *Classifier {
	return NewClassifierWithSets(DefaultCashAssets, DefaultGoldAssets)
}

// NewClassifierWithSets creates a classifier with custom class membership.
func NewClassifierWithSets(cash, gold []string) *Classifier {
	c := &Classifier{
		cash: make(map[string]bool, len(cash)),
		gold: make(map[string]bool, len(gold)),
	}
	for _, s := range cash {
		c.cash[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	for _, s := range gold {
		c.gold[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	return c
}

// Class returns the asset class for a symbol.
func (c *Classifier) Class(symbol string) AssetClass {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case c.cash[key]:
		return ClassCash
	case c.gold[key]:
		return ClassGold
	default:
		return ClassCrypto
	}
}

// ClassTotal is the aggregate value of one asset class. Ratio is the
// class's share of the total portfolio value.
type ClassTotal struct {
	Class AssetClass      `json:"class"`
	Value decimal.Decimal `json:"value"`
	Ratio decimal.Decimal `json:"ratio"`
}

// Breakdown totals holding values per class, in fixed cash, gold, crypto
// order. With a zero total value every ratio is zero; unpriced holdings
// simply contribute nothing.
func (c *Classifier) Breakdown(holdings []Holding) []ClassTotal {
	totals := make(map[AssetClass]decimal.Decimal, 3)
	total := decimal.Zero
	for _, h := range holdings {
		class := c.Class(h.Symbol)
		totals[class] = totals[class].Add(h.Value)
		total = total.Add(h.Value)
	}

	out := make([]ClassTotal, 0, 3)
	for _, class := range []AssetClass{ClassCash, ClassGold, ClassCrypto} {
		entry := ClassTotal{Class: class, Value: totals[class]}
		if total.IsPositive() {
			entry.Ratio = totals[class].Div(total)
		}
		out = append(out, entry)
	}
	return out
}
