package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

// Table names within the portfolio dataset.
const (
	assetsTable       = "assets"
	transactionsTable = "transactions"
	historyTable      = "user_portfolio_history"
	profilesTable     = "profiles"
)

// AssetRow is one stored holding. Symbol is the natural key; the whole
// table is replaced on every sync.
type AssetRow struct {
	Symbol string   `bigquery:"symbol"`
	Name   string   `bigquery:"name"`
	Amount *big.Rat `bigquery:"amount"` // NUMERIC
}

// TransactionRow is one stored deposit or withdrawal.
type TransactionRow struct {
	TransactionID string    `bigquery:"transaction_id"`
	UserID        string    `bigquery:"user_id"`
	Date          time.Time `bigquery:"date"`
	Type          string    `bigquery:"type"`
	Amount        *big.Rat  `bigquery:"amount"` // NUMERIC
	Description   string    `bigquery:"description"`
	CreatedTS     time.Time `bigquery:"created_ts"`
}

// HistoryRow is one per-user, per-date portfolio snapshot.
type HistoryRow struct {
	EntryID  string     `bigquery:"entry_id"`
	Date     civil.Date `bigquery:"date"`
	UserID   string     `bigquery:"user_id"`
	Value    *big.Rat   `bigquery:"value"`    // NUMERIC
	Invested *big.Rat   `bigquery:"invested"` // NUMERIC
}

// ProfileRow mirrors the profiles table owned by the identity service.
// This repository only ever reads it.
type ProfileRow struct {
	ID       string `bigquery:"id"`
	Email    string `bigquery:"email"`
	FullName string `bigquery:"full_name"`
	Role     string `bigquery:"role"`
}

// numericPrecision bounds the digits recovered when reading NUMERIC
// columns back into decimals.
const numericPrecision = 18

func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func decimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, numericPrecision)
}

func assetRowFromDomain(h domain.Holding) *AssetRow {
	return &AssetRow{Symbol: h.Symbol, Name: h.Name, Amount: ratFromDecimal(h.Amount)}
}

func (r *AssetRow) toDomain() domain.Holding {
	return domain.Holding{Symbol: r.Symbol, Name: r.Name, Amount: decimalFromRat(r.Amount)}
}

func transactionRowFromDomain(t domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Date:          t.Date,
		Type:          string(t.Type),
		Amount:        ratFromDecimal(t.Amount),
		Description:   t.Description,
		CreatedTS:     time.Now().UTC(),
	}
}

func (r *TransactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		Date:        r.Date,
		Type:        domain.TransactionType(r.Type),
		Amount:      decimalFromRat(r.Amount),
		Description: r.Description,
	}
}

func historyRowFromDomain(id string, rec domain.HistoryRecord) *HistoryRow {
	return &HistoryRow{
		EntryID:  id,
		Date:     civil.DateOf(rec.Date),
		UserID:   rec.UserID,
		Value:    ratFromDecimal(rec.Value),
		Invested: ratFromDecimal(rec.Invested),
	}
}

func (r *HistoryRow) toDomain() domain.HistoryRecord {
	return domain.HistoryRecord{
		Date:     r.Date.In(time.UTC),
		UserID:   r.UserID,
		Value:    decimalFromRat(r.Value),
		Invested: decimalFromRat(r.Invested),
	}
}

func (r *ProfileRow) toDomain() domain.Profile {
	return domain.Profile{ID: r.ID, Email: r.Email, FullName: r.FullName, Role: domain.Role(r.Role)}
}
