package report

import (
	"fmt"
	"strings"
)

// Format is a rendered report's file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Content types of rendered reports.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// ParseFormat accepts "html" or "pdf" in any case; empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected html or pdf)", s)
	}
}

// Extension is the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "html"
}

// ContentType is the MIME type for uploads.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return ContentTypePDF
	}
	return ContentTypeHTML
}

// Document is a rendered report ready to publish.
type Document struct {
	Format Format
	Data   []byte
}

// RenderDocument renders r in format.
func RenderDocument(r *Report, format Format) (Document, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPDF:
		data, err = RenderPDF(r)
	case FormatHTML, "":
		format = FormatHTML
		data, err = Render(r)
	default:
		return Document{}, fmt.Errorf("RenderDocument: unknown format %q", format)
	}
	if err != nil {
		return Document{}, err
	}
	return Document{Format: format, Data: data}, nil
}
