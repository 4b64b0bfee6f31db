package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 50rem; color: #2c3e50; }
h1 { color: #1f77b4; text-align: center; }
table { border-collapse: collapse; margin-bottom: 1.5rem; min-width: 60%%; }
th { background: #1f77b4; color: #fff; }
th, td { border: 1px solid #333; padding: 0.4rem 0.8rem; }
tr:nth-child(even) td { background: #f5f5dc; }
figure.chart { margin: 0 0 2rem; }
</style>
</head>
<body>
`

const pageFooter = "</body>\n</html>\n"

// Render converts the report into a standalone HTML document, with the
// revenue and opex charts inlined as SVG after their tables.
func Render(r *Report) ([]byte, error) {
	var out bytes.Buffer
	fmt.Fprintf(&out, pageHeader, html.EscapeString(Title+" - "+r.Month))

	if err := markdown.Convert([]byte(headerMarkdown(r)), &out); err != nil {
		return nil, fmt.Errorf("Render: converting header: %w", err)
	}
	for _, s := range sections(r) {
		if err := markdown.Convert([]byte(s.markdown()), &out); err != nil {
			return nil, fmt.Errorf("Render: converting %s: %w", s.title, err)
		}
		if s.chart != nil {
			out.WriteString(chartSVG(s.chart))
		}
	}

	out.WriteString(pageFooter)
	return out.Bytes(), nil
}
