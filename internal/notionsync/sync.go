// Package notionsync publishes monthly KPI snapshots to a Notion database,
// one page per month keyed by its "Month" title.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/cfo-copilot/internal/logger"
	"github.com/jomei/notionapi"
)

// SyncResult counts what a sync did (or would do, in dry-run mode).
type SyncResult struct {
	Created int
	Updated int
	Failed  int
}

// SyncKPIs upserts snapshots into the database: months that already have a
// page are updated, the rest are created. Per-page API failures are logged
// and counted; the sync carries on.
func SyncKPIs(ctx context.Context, snapshots []KPISnapshot, notionClient NotionService, notionDBID string, dryRun bool) (SyncResult, error) {
	log := logger.FromContext(ctx)
	var result SyncResult

	log.Info().
		Int("snapshots", len(snapshots)).
		Bool("dry_run", dryRun).
		Msg("Starting KPI sync to Notion")

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return result, fmt.Errorf("SyncKPIs: querying existing pages: %w", err)
	}

	pageByMonth := make(map[string]string, len(pages))
	for _, page := range pages {
		if month := extractMonth(page); month != "" {
			if _, seen := pageByMonth[month]; !seen {
				pageByMonth[month] = string(page.ID)
			}
		}
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	for _, s := range snapshots {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageID, exists := pageByMonth[s.Month]

		if dryRun {
			if exists {
				log.Info().Str("month", s.Month).Str("page_id", pageID).Msg("[DRY RUN] Would update KPI page")
				result.Updated++
			} else {
				log.Info().Str("month", s.Month).Msg("[DRY RUN] Would create KPI page")
				result.Created++
			}
			continue
		}

		props := SnapshotToNotionProperties(s)

		if exists {
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("month", s.Month).Str("page_id", pageID).Msg("Failed to update KPI page")
				result.Failed++
				continue
			}
			log.Info().Str("month", s.Month).Str("page_id", pageID).Msg("Updated KPI page")
			result.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().Err(err).Str("month", s.Month).Msg("Failed to create KPI page")
			result.Failed++
			continue
		}
		log.Info().Str("month", s.Month).Str("page_id", string(page.ID)).Msg("Created KPI page")
		result.Created++
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("KPI sync completed")

	return result, nil
}

// queryAllNotionPages follows the query cursor until every page is read.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
