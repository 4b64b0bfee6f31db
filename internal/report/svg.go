package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/copilot"
)

const (
	svgWidth  = 480
	svgHeight = 300
)

// chartSVG renders bar and pie charts; other chart types render nothing.
func chartSVG(c *copilot.ChartConfig) string {
	switch c.ChartType {
	case copilot.ChartBar:
		return barSVG(c)
	case copilot.ChartPie:
		return pieSVG(c)
	}
	return ""
}

func svgOpen(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, `<figure class="chart"><svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`,
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(sb, `<title>%s</title>`, html.EscapeString(title))
	fmt.Fprintf(sb, `<text x="%d" y="20" text-anchor="middle" font-weight="bold" font-size="14">%s</text>`,
		svgWidth/2, html.EscapeString(title))
}

func svgClose(sb *strings.Builder) {
	sb.WriteString("</svg></figure>\n")
}

func barSVG(c *copilot.ChartConfig) string {
	bars := barsOf(c)
	if len(bars) == 0 {
		return ""
	}

	const (
		top    = 40.0
		bottom = 260.0
		left   = 60.0
		right  = 460.0
	)
	slot := (right - left) / float64(len(bars))
	width := slot * 0.6

	var sb strings.Builder
	svgOpen(&sb, c.Title)
	fmt.Fprintf(&sb, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#333"/>`, left, bottom, right, bottom)
	for i, b := range bars {
		h := (bottom - top) * b.frac
		x := left + slot*float64(i) + (slot-width)/2
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x, bottom-h, width, h, html.EscapeString(b.color))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12">%s</text>`,
			x+width/2, bottom-h-6, html.EscapeString(b.text))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12">%s</text>`,
			x+width/2, bottom+18, html.EscapeString(b.label))
	}
	svgClose(&sb)
	return sb.String()
}

func pieSVG(c *copilot.ChartConfig) string {
	slices := slicesOf(c)
	if len(slices) == 0 {
		return ""
	}

	const (
		cx = 150.0
		cy = 160.0
		r  = 110.0
	)

	var sb strings.Builder
	svgOpen(&sb, c.Title)
	for i, s := range slices {
		color := html.EscapeString(s.color)
		if s.end-s.start >= 2*math.Pi-1e-9 {
			fmt.Fprintf(&sb, `<circle cx="%.0f" cy="%.0f" r="%.0f" fill="%s"/>`, cx, cy, r, color)
		} else {
			x1, y1 := pointOn(cx, cy, r, s.start)
			x2, y2 := pointOn(cx, cy, r, s.end)
			large := 0
			if s.end-s.start > math.Pi {
				large = 1
			}
			fmt.Fprintf(&sb, `<path d="M %.0f %.0f L %.2f %.2f A %.0f %.0f 0 %d 1 %.2f %.2f Z" fill="%s"/>`,
				cx, cy, x1, y1, r, r, large, x2, y2, color)
		}

		ly := 60 + 22*i
		fmt.Fprintf(&sb, `<rect x="290" y="%d" width="12" height="12" fill="%s"/>`, ly, color)
		fmt.Fprintf(&sb, `<text x="308" y="%d" font-size="12">%s (%s)</text>`,
			ly+11, html.EscapeString(s.label), html.EscapeString(s.text))
	}
	svgClose(&sb)
	return sb.String()
}
