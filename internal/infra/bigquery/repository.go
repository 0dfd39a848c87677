// Package bigquery implements the persistence collaborator: four logical
// tables in a BigQuery dataset, written with full delete+insert on every
// sync and read back for the dashboard views.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/wkoning/portfolio-tracker/internal/config"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"google.golang.org/api/iterator"
)

// Repository holds a shared BigQuery client so each operation does not
// open its own connection.
type Repository struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewRepository creates a repository against the configured project and
// dataset.
func NewRepository(ctx context.Context, cfg config.Config) (*Repository, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("NewRepository: project id is required (set GCP_PROJECT)")
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, project: cfg.ProjectID, dataset: cfg.DatasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *Repository) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.project, r.dataset, name)
}

func (r *Repository) runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

func (r *Repository) deleteAll(ctx context.Context, tableName string) error {
	q := r.client.Query(`DELETE FROM ` + r.table(tableName) + ` WHERE TRUE`)
	if err := r.runQuery(ctx, q); err != nil {
		return fmt.Errorf("deleteAll %s: %w", tableName, err)
	}
	return nil
}

// DeleteAllAssets removes every stored holding.
func (r *Repository) DeleteAllAssets(ctx context.Context) error {
	return r.deleteAll(ctx, assetsTable)
}

// InsertAssets writes the deduplicated holdings of one sync batch.
func (r *Repository) InsertAssets(ctx context.Context, holdings []domain.Holding) error {
	if len(holdings) == 0 {
		return nil
	}
	rows := make([]*AssetRow, len(holdings))
	for i, h := range holdings {
		rows[i] = assetRowFromDomain(h)
	}
	inserter := r.client.DatasetInProject(r.project, r.dataset).Table(assetsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAssets: inserting rows: %w", err)
	}
	return nil
}

// DeleteAllTransactions removes every stored transaction.
func (r *Repository) DeleteAllTransactions(ctx context.Context) error {
	return r.deleteAll(ctx, transactionsTable)
}

// InsertTransactions writes the matched transactions of one sync batch.
func (r *Repository) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*TransactionRow, len(txs))
	for i, t := range txs {
		rows[i] = transactionRowFromDomain(t)
	}
	inserter := r.client.DatasetInProject(r.project, r.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// DeleteAllHistory removes every stored history snapshot.
func (r *Repository) DeleteAllHistory(ctx context.Context) error {
	return r.deleteAll(ctx, historyTable)
}

// InsertHistory writes the unpivoted history records of one sync batch.
func (r *Repository) InsertHistory(ctx context.Context, records []domain.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*HistoryRow, len(records))
	for i, rec := range records {
		rows[i] = historyRowFromDomain(uuid.NewString(), rec)
	}
	inserter := r.client.DatasetInProject(r.project, r.dataset).Table(historyTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertHistory: inserting rows: %w", err)
	}
	return nil
}

// ListProfiles reads the profiles table. Profiles are owned by the
// identity service; this is the read-only side used for name matching
// and role gating.
func (r *Repository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	q := r.client.Query(`
		SELECT id, email, full_name, role
		FROM ` + r.table(profilesTable) + `
		ORDER BY full_name
	`)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListProfiles: query read: %w", err)
	}

	var profiles []domain.Profile
	for {
		var row ProfileRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListProfiles: iter next: %w", err)
		}
		profiles = append(profiles, row.toDomain())
	}
	return profiles, nil
}

// ListAssets reads all stored holdings.
func (r *Repository) ListAssets(ctx context.Context) ([]domain.Holding, error) {
	q := r.client.Query(`
		SELECT symbol, name, amount
		FROM ` + r.table(assetsTable) + `
		ORDER BY symbol
	`)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAssets: query read: %w", err)
	}

	var holdings []domain.Holding
	for {
		var row AssetRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAssets: iter next: %w", err)
		}
		holdings = append(holdings, row.toDomain())
	}
	return holdings, nil
}

// ListTransactions reads all stored transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	q := r.client.Query(`
		SELECT transaction_id, user_id, date, type, amount, description, created_ts
		FROM ` + r.table(transactionsTable) + `
		ORDER BY date DESC
	`)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		txs = append(txs, row.toDomain())
	}
	return txs, nil
}

// ListHistory reads all stored history snapshots in date order.
func (r *Repository) ListHistory(ctx context.Context) ([]domain.HistoryRecord, error) {
	q := r.client.Query(`
		SELECT entry_id, date, user_id, value, invested
		FROM ` + r.table(historyTable) + `
		ORDER BY date
	`)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListHistory: query read: %w", err)
	}

	var records []domain.HistoryRecord
	for {
		var row HistoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListHistory: iter next: %w", err)
		}
		records = append(records, row.toDomain())
	}
	return records, nil
}
