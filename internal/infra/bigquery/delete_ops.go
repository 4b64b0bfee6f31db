package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

var financeTables = map[string]bool{
	ActualsTable: true,
	BudgetTable:  true,
	CashTable:    true,
	FXRatesTable: true,
}

// TruncateTableWithClient deletes every row of a finance table. Only the four
// finance tables are accepted.
func TruncateTableWithClient(ctx context.Context, client *bigquery.Client, datasetID, table string) error {
	if !financeTables[table] {
		return fmt.Errorf("TruncateTable: unknown finance table %q", table)
	}

	q := client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE TRUE
	`, qualifiedTable(client, datasetID, table)))

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("TruncateTable(%s): run query: %w", table, err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("TruncateTable(%s): wait for job: %w", table, err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("TruncateTable(%s): job error: %w", table, err)
	}

	return nil
}
