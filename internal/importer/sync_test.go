package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

type mockStore struct {
	profiles    []domain.Profile
	profilesErr error
	failStep    string

	calls        []string
	insertedTxs  []domain.Transaction
	insertedHist []domain.HistoryRecord
	insertedHold []domain.Holding
}

func (m *mockStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return m.profiles, m.profilesErr
}

func (m *mockStore) step(name string) error {
	m.calls = append(m.calls, name)
	if m.failStep == name {
		return errors.New("boom")
	}
	return nil
}

func (m *mockStore) DeleteAllAssets(ctx context.Context) error { return m.step("delete_assets") }

func (m *mockStore) InsertAssets(ctx context.Context, holdings []domain.Holding) error {
	m.insertedHold = holdings
	return m.step("insert_assets")
}

func (m *mockStore) DeleteAllTransactions(ctx context.Context) error {
	return m.step("delete_transactions")
}

func (m *mockStore) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	m.insertedTxs = txs
	return m.step("insert_transactions")
}

func (m *mockStore) DeleteAllHistory(ctx context.Context) error { return m.step("delete_history") }

func (m *mockStore) InsertHistory(ctx context.Context, records []domain.HistoryRecord) error {
	m.insertedHist = records
	return m.step("insert_history")
}

func TestSync(t *testing.T) {
	store := &mockStore{profiles: testProfiles}
	data := &domain.PortfolioData{
		Holdings: []domain.Holding{{Symbol: "BTC"}},
		Transactions: []domain.Transaction{
			{ID: "t-1", UserName: "Willem"},
			{ID: "t-2", UserName: "Nobody"},
		},
		History: []domain.HistoryRecord{{UserName: "Willem"}},
	}

	report, err := Sync(context.Background(), store, data, zerolog.Nop())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	wantOrder := []string{
		"delete_assets", "insert_assets",
		"delete_transactions", "insert_transactions",
		"delete_history", "insert_history",
	}
	if len(store.calls) != len(wantOrder) {
		t.Fatalf("store calls = %v, want %v", store.calls, wantOrder)
	}
	for i, name := range wantOrder {
		if store.calls[i] != name {
			t.Fatalf("store calls = %v, want %v", store.calls, wantOrder)
		}
	}

	if len(report.Steps) != 6 {
		t.Fatalf("report has %d steps, want 6", len(report.Steps))
	}
	for _, step := range report.Steps {
		if !step.OK {
			t.Errorf("step %s not ok: %s", step.Name, step.Error)
		}
	}
	if report.DroppedTransactions != 1 {
		t.Errorf("DroppedTransactions = %d, want 1", report.DroppedTransactions)
	}

	if len(store.insertedTxs) != 1 || store.insertedTxs[0].UserID != "p-1" {
		t.Errorf("inserted transactions = %+v, want one resolved to p-1", store.insertedTxs)
	}
	if len(store.insertedHold) != 1 {
		t.Errorf("inserted holdings = %+v, want one", store.insertedHold)
	}
}

func TestSyncAbortsAtFirstFailure(t *testing.T) {
	store := &mockStore{profiles: testProfiles, failStep: "delete_transactions"}
	data := &domain.PortfolioData{Holdings: []domain.Holding{{Symbol: "BTC"}}}

	report, err := Sync(context.Background(), store, data, zerolog.Nop())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if len(store.calls) != 3 {
		t.Errorf("store calls = %v, want stop after delete_transactions", store.calls)
	}
	if len(report.Steps) != 3 {
		t.Fatalf("report has %d steps, want 3", len(report.Steps))
	}
	last := report.Steps[2]
	if last.Name != "delete_transactions" || last.OK || last.Error == "" {
		t.Errorf("last step = %+v, want failed delete_transactions", last)
	}
}

func TestSyncProfilesError(t *testing.T) {
	store := &mockStore{profilesErr: errors.New("unreachable")}

	report, err := Sync(context.Background(), store, &domain.PortfolioData{}, zerolog.Nop())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if report != nil {
		t.Errorf("report = %+v, want nil when listing profiles fails", report)
	}
	if len(store.calls) != 0 {
		t.Errorf("store calls = %v, want none before profiles are loaded", store.calls)
	}
}
