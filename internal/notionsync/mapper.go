package notionsync

import (
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

// Property names in the KPI database.
const (
	PropMonth           = "Month"
	PropRevenue         = "Revenue"
	PropBudget          = "Budget"
	PropVariance        = "Variance"
	PropVariancePct     = "Variance %"
	PropGrossMarginPct  = "Gross Margin %"
	PropOpex            = "Opex"
	PropEBITDA          = "EBITDA"
	PropEBITDAMarginPct = "EBITDA Margin %"
)

// SnapshotToNotionProperties maps a snapshot to KPI database properties.
// Percentages are stored in percentage points.
func SnapshotToNotionProperties(s KPISnapshot) notionapi.Properties {
	props := notionapi.Properties{
		PropMonth: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: s.Month},
				},
			},
		},
		PropRevenue:         number(s.Revenue),
		PropBudget:          number(s.Budget),
		PropVariance:        number(s.Variance),
		PropVariancePct:     number(s.VariancePct.Round(2)),
		PropOpex:            number(s.Opex),
		PropEBITDA:          number(s.EBITDA),
		PropEBITDAMarginPct: number(s.EBITDAMarginPct.Round(2)),
	}

	if s.GrossMarginPct != nil {
		props[PropGrossMarginPct] = number(s.GrossMarginPct.Round(2))
	}

	return props
}

func number(d decimal.Decimal) notionapi.NumberProperty {
	return notionapi.NumberProperty{Number: d.InexactFloat64()}
}

// extractMonth reads the Month title of a queried page.
func extractMonth(page notionapi.Page) string {
	if prop, ok := page.Properties[PropMonth]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
