package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q): %v", s, err)
	}
	return d
}

func TestAssetRowRoundTrip(t *testing.T) {
	h := domain.Holding{Symbol: "BTC", Name: "Bitcoin", Amount: dec(t, "0.123456789")}

	got := assetRowFromDomain(h).toDomain()

	if got.Symbol != h.Symbol || got.Name != h.Name || !got.Amount.Equal(h.Amount) {
		t.Errorf("round trip = %+v, want %+v", got, h)
	}
}

func TestTransactionRowFromDomain(t *testing.T) {
	tx := domain.Transaction{
		ID:          "t-1",
		UserID:      "p-1",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Type:        domain.TypeWithdrawal,
		Amount:      dec(t, "50.25"),
		Description: "cash out",
	}

	row := transactionRowFromDomain(tx)

	if row.TransactionID != "t-1" || row.Type != "withdrawal" {
		t.Errorf("row = %+v, want id t-1 type withdrawal", row)
	}
	if row.CreatedTS.IsZero() {
		t.Error("CreatedTS not set")
	}

	got := row.toDomain()
	if got.ID != tx.ID || got.Type != tx.Type || !got.Amount.Equal(tx.Amount) || !got.Date.Equal(tx.Date) {
		t.Errorf("round trip = %+v, want %+v", got, tx)
	}
}

func TestHistoryRowRoundTrip(t *testing.T) {
	rec := domain.HistoryRecord{
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UserID:   "p-1",
		Value:    dec(t, "500"),
		Invested: dec(t, "100"),
	}

	row := historyRowFromDomain("e-1", rec)
	if row.Date != civil.DateOf(rec.Date) {
		t.Errorf("row date = %v, want %v", row.Date, civil.DateOf(rec.Date))
	}

	got := row.toDomain()
	if !got.Date.Equal(rec.Date) || got.UserID != rec.UserID {
		t.Errorf("round trip = %+v, want %+v", got, rec)
	}
	if !got.Value.Equal(rec.Value) || !got.Invested.Equal(rec.Invested) {
		t.Errorf("round trip amounts = %s / %s, want 500 / 100", got.Value, got.Invested)
	}
}

func TestDecimalFromRatNil(t *testing.T) {
	if got := decimalFromRat(nil); !got.IsZero() {
		t.Errorf("decimalFromRat(nil) = %s, want 0", got)
	}
}
