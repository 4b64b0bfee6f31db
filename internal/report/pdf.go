package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/copilot"
	"github.com/go-pdf/fpdf"
)

// Section header fills, in section order.
var pdfHeaderColors = []string{"#1f77b4", "#2ca02c", "#9467bd", "#ff7f0e"}

const (
	pdfFont        = "Helvetica"
	pdfRowHeight   = 8.0
	pdfChartWidth  = 127.0 // 5in
	pdfChartHeight = 84.0  // 3.3in
)

// RenderPDF lays the report out on US Letter pages: revenue with its bar
// chart, opex with its pie chart, then EBITDA and cash runway.
func RenderPDF(r *Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(Title+" - "+r.Month, false)
	pdf.SetCreator("cfo-copilot", false)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, "∞", "Infinite"))
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 24)
	pdf.SetTextColor(31, 119, 180)
	pdf.CellFormat(0, 14, text(Title), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, text("Report Date: "+r.GeneratedAt.Format("January 02, 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, text("Reporting Month: "+r.Month), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	for i, s := range sections(r) {
		if s.newPage {
			pdf.AddPage()
		}

		pdf.SetFont(pdfFont, "B", 16)
		pdf.SetTextColor(44, 62, 80)
		pdf.CellFormat(0, 10, text(s.title), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		if s.note != "" {
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, 6, text(s.note), "", "L", false)
		}
		if s.table != nil {
			pdfTable(pdf, s.table, colorAt(pdfHeaderColors, i), text)
		}
		if s.chart != nil {
			pdf.Ln(6)
			pdfChart(pdf, s.chart, text)
		}
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("RenderPDF: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfTable(pdf *fpdf.Fpdf, t *table, headerColor string, text func(string) string) {
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	width := math.Min(pageW-left-right, 40*float64(len(t.header)+1))
	first := width / float64(len(t.header)+1) * 2
	rest := (width - first) / math.Max(1, float64(len(t.header)-1))
	colW := func(j int) float64 {
		if j == 0 {
			return first
		}
		return rest
	}
	align := func(j int) string {
		if j == 0 {
			return "L"
		}
		return "R"
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(rgb(headerColor))
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(pdfFont, "B", 12)
	for j, h := range t.header {
		pdf.CellFormat(colW(j), pdfRowHeight+2, text(h), "1", 0, align(j), true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	for i, row := range t.rows {
		style := ""
		pdf.SetFillColor(245, 245, 220)
		if t.bold[i] {
			style = "B"
			pdf.SetFillColor(212, 237, 218)
		}
		pdf.SetFont(pdfFont, style, 11)
		for j, c := range row {
			pdf.CellFormat(colW(j), pdfRowHeight, text(c), "1", 0, align(j), true, 0, "")
		}
		pdf.Ln(-1)
	}
}

// pdfChart draws bar and pie charts in a chart-sized box at the cursor.
func pdfChart(pdf *fpdf.Fpdf, c *copilot.ChartConfig, text func(string) string) {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	if pdf.GetY()+pdfChartHeight > pageH-bottomMargin {
		pdf.AddPage()
	}

	left, _, _, _ := pdf.GetMargins()
	x, y := left, pdf.GetY()

	pdf.SetFont(pdfFont, "B", 12)
	pdf.SetXY(x, y)
	pdf.CellFormat(pdfChartWidth, 7, text(c.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)

	switch c.ChartType {
	case copilot.ChartBar:
		pdfBars(pdf, barsOf(c), x, y+10, text)
	case copilot.ChartPie:
		pdfPie(pdf, slicesOf(c), x, y+10, text)
	}
	pdf.SetXY(left, y+pdfChartHeight)
}

func pdfBars(pdf *fpdf.Fpdf, bars []bar, x, y float64, text func(string) string) {
	if len(bars) == 0 {
		return
	}
	plotH := pdfChartHeight - 24
	base := y + plotH
	slot := pdfChartWidth / float64(len(bars))
	width := slot * 0.6

	pdf.SetDrawColor(51, 51, 51)
	pdf.Line(x, base, x+pdfChartWidth, base)
	for i, b := range bars {
		h := plotH * b.frac
		bx := x + slot*float64(i) + (slot-width)/2
		pdf.SetFillColor(rgb(b.color))
		if h > 0 {
			pdf.Rect(bx, base-h, width, h, "F")
		}
		pdf.SetXY(bx, base-h-6)
		pdf.CellFormat(width, 5, text(b.text), "", 0, "C", false, 0, "")
		pdf.SetXY(bx, base+1)
		pdf.CellFormat(width, 5, text(b.label), "", 0, "C", false, 0, "")
	}
}

func pdfPie(pdf *fpdf.Fpdf, slices []slice, x, y float64, text func(string) string) {
	if len(slices) == 0 {
		return
	}
	radius := (pdfChartHeight - 16) / 2
	cx, cy := x+radius+4, y+radius

	for i, s := range slices {
		pdf.SetFillColor(rgb(s.color))
		pdf.SetDrawColor(255, 255, 255)
		if s.end-s.start >= 2*math.Pi-1e-9 {
			pdf.Circle(cx, cy, radius, "F")
		} else {
			pdf.Polygon(wedge(cx, cy, radius, s.start, s.end), "FD")
		}

		ly := y + 4 + 7*float64(i)
		lx := cx + radius + 12
		pdf.Rect(lx, ly, 4, 4, "F")
		pdf.SetXY(lx+6, ly-0.5)
		pdf.CellFormat(60, 5, text(s.label+" ("+s.text+")"), "", 0, "L", false, 0, "")
	}
}

// wedge approximates a pie wedge with its center and arc points at most two
// degrees apart.
func wedge(cx, cy, r, start, end float64) []fpdf.PointType {
	steps := int(math.Ceil((end - start) / (2 * math.Pi / 180)))
	if steps < 1 {
		steps = 1
	}
	points := make([]fpdf.PointType, 0, steps+2)
	points = append(points, fpdf.PointType{X: cx, Y: cy})
	for i := 0; i <= steps; i++ {
		px, py := pointOn(cx, cy, r, start+(end-start)*float64(i)/float64(steps))
		points = append(points, fpdf.PointType{X: px, Y: py})
	}
	return points
}
