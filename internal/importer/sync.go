package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

// Store is the persistence collaborator the sync writes through. The
// concrete implementation lives in internal/infra/bigquery.
type Store interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	DeleteAllAssets(ctx context.Context) error
	InsertAssets(ctx context.Context, holdings []domain.Holding) error
	DeleteAllTransactions(ctx context.Context) error
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
	DeleteAllHistory(ctx context.Context) error
	InsertHistory(ctx context.Context, records []domain.HistoryRecord) error
}

// SyncStep records the outcome of one step of the non-atomic sync.
type SyncStep struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SyncReport makes the partial-failure state of a sync observable: the
// delete/insert steps run sequentially with no transaction boundary, so
// a failure mid-way leaves earlier tables already replaced.
type SyncReport struct {
	Steps               []SyncStep `json:"steps"`
	DroppedTransactions int        `json:"dropped_transactions"`
	DroppedHistory      int        `json:"dropped_history"`
}

// Sync replaces all persisted holdings, transactions and history with the
// imported batch. Free-text user names are resolved against stored
// profiles first; unmatched rows are dropped with a warning. The write is
// delete-all then insert-all per table, aborting at the first failed
// step.
func Sync(ctx context.Context, store Store, data *domain.PortfolioData, log zerolog.Logger) (*SyncReport, error) {
	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("Sync: listing profiles: %w", err)
	}

	report := &SyncReport{}
	report.DroppedTransactions, report.DroppedHistory = MatchUsers(data, profiles, log)

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"delete_assets", store.DeleteAllAssets},
		{"insert_assets", func(ctx context.Context) error { return store.InsertAssets(ctx, data.Holdings) }},
		{"delete_transactions", store.DeleteAllTransactions},
		{"insert_transactions", func(ctx context.Context) error { return store.InsertTransactions(ctx, data.Transactions) }},
		{"delete_history", store.DeleteAllHistory},
		{"insert_history", func(ctx context.Context) error { return store.InsertHistory(ctx, data.History) }},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			report.Steps = append(report.Steps, SyncStep{Name: step.name, Error: err.Error()})
			return report, fmt.Errorf("Sync: step %s: %w", step.name, err)
		}
		report.Steps = append(report.Steps, SyncStep{Name: step.name, OK: true})
	}

	log.Info().
		Int("holdings", len(data.Holdings)).
		Int("transactions", len(data.Transactions)).
		Int("history", len(data.History)).
		Msg("Sync complete, stored state replaced")

	return report, nil
}
