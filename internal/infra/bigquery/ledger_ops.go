package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

func qualifiedTable(client *bigquery.Client, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, table)
}

// ListLedgerWithClient returns every row of a ledger table (actuals or budget)
// ordered by month and category.
func ListLedgerWithClient(ctx context.Context, client *bigquery.Client, datasetID, table string) ([]*LedgerRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  month,
		  account_category,
		  currency,
		  amount
		FROM %s
		ORDER BY month, account_category, currency
	`, qualifiedTable(client, datasetID, table)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListLedger(%s): query read: %w", table, err)
	}

	var rows []*LedgerRow
	for {
		var r LedgerRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListLedger(%s): iter next: %w", table, err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// InsertLedgerWithClient streams a batch of ledger rows into table.
func InsertLedgerWithClient(ctx context.Context, client *bigquery.Client, datasetID, table string, rows []*LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertLedger(%s): inserting rows: %w", table, err)
	}

	return nil
}
