package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ListCashWithClient returns all end-of-month cash balances ordered by month.
func ListCashWithClient(ctx context.Context, client *bigquery.Client, datasetID string) ([]*CashRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  month,
		  cash_usd
		FROM %s
		ORDER BY month
	`, qualifiedTable(client, datasetID, CashTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCash: query read: %w", err)
	}

	var rows []*CashRow
	for {
		var r CashRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCash: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// InsertCashWithClient streams a batch of cash rows into finance.cash.
func InsertCashWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*CashRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(CashTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertCash: inserting rows: %w", err)
	}

	return nil
}
