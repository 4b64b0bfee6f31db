package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ListFXRatesWithClient returns all FX rates ordered by month and currency.
func ListFXRatesWithClient(ctx context.Context, client *bigquery.Client, datasetID string) ([]*FXRateRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  month,
		  currency,
		  rate_to_usd
		FROM %s
		ORDER BY month, currency
	`, qualifiedTable(client, datasetID, FXRatesTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListFXRates: query read: %w", err)
	}

	var rows []*FXRateRow
	for {
		var r FXRateRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListFXRates: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// InsertFXRatesWithClient streams a batch of FX rows into finance.fx_rates.
func InsertFXRatesWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*FXRateRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(FXRatesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertFXRates: inserting rows: %w", err)
	}

	return nil
}
