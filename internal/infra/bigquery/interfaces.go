package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// FinanceRepository provides access to the four finance tables.
type FinanceRepository interface {
	// ListActuals returns every row of finance.actuals.
	ListActuals(ctx context.Context) ([]*LedgerRow, error)

	// ListBudget returns every row of finance.budget.
	ListBudget(ctx context.Context) ([]*LedgerRow, error)

	// ListCash returns every row of finance.cash.
	ListCash(ctx context.Context) ([]*CashRow, error)

	// ListFXRates returns every row of finance.fx_rates.
	ListFXRates(ctx context.Context) ([]*FXRateRow, error)

	// InsertActuals streams rows into finance.actuals.
	InsertActuals(ctx context.Context, rows []*LedgerRow) error

	// InsertBudget streams rows into finance.budget.
	InsertBudget(ctx context.Context, rows []*LedgerRow) error

	// InsertCash streams rows into finance.cash.
	InsertCash(ctx context.Context, rows []*CashRow) error

	// InsertFXRates streams rows into finance.fx_rates.
	InsertFXRates(ctx context.Context, rows []*FXRateRow) error

	// Truncate deletes every row of the given finance table.
	Truncate(ctx context.Context, table string) error
}

// BigQueryFinanceRepository is the concrete implementation of FinanceRepository.
// It holds a shared BigQuery client to avoid creating a new connection for
// each operation.
type BigQueryFinanceRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryFinanceRepository creates a repository for the finance tables of
// datasetID in projectID.
func NewBigQueryFinanceRepository(ctx context.Context, projectID, datasetID string) (*BigQueryFinanceRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryFinanceRepository: creating client: %w", err)
	}
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	return &BigQueryFinanceRepository{
		client:    client,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryFinanceRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryFinanceRepository) ListActuals(ctx context.Context) ([]*LedgerRow, error) {
	return ListLedgerWithClient(ctx, r.client, r.datasetID, ActualsTable)
}

func (r *BigQueryFinanceRepository) ListBudget(ctx context.Context) ([]*LedgerRow, error) {
	return ListLedgerWithClient(ctx, r.client, r.datasetID, BudgetTable)
}

func (r *BigQueryFinanceRepository) ListCash(ctx context.Context) ([]*CashRow, error) {
	return ListCashWithClient(ctx, r.client, r.datasetID)
}

func (r *BigQueryFinanceRepository) ListFXRates(ctx context.Context) ([]*FXRateRow, error) {
	return ListFXRatesWithClient(ctx, r.client, r.datasetID)
}

func (r *BigQueryFinanceRepository) InsertActuals(ctx context.Context, rows []*LedgerRow) error {
	return InsertLedgerWithClient(ctx, r.client, r.datasetID, ActualsTable, rows)
}

func (r *BigQueryFinanceRepository) InsertBudget(ctx context.Context, rows []*LedgerRow) error {
	return InsertLedgerWithClient(ctx, r.client, r.datasetID, BudgetTable, rows)
}

func (r *BigQueryFinanceRepository) InsertCash(ctx context.Context, rows []*CashRow) error {
	return InsertCashWithClient(ctx, r.client, r.datasetID, rows)
}

func (r *BigQueryFinanceRepository) InsertFXRates(ctx context.Context, rows []*FXRateRow) error {
	return InsertFXRatesWithClient(ctx, r.client, r.datasetID, rows)
}

func (r *BigQueryFinanceRepository) Truncate(ctx context.Context, table string) error {
	return TruncateTableWithClient(ctx, r.client, r.datasetID, table)
}
