// Package pdfdoc sets up fpdf documents from page-layout parameters shared
// by the PDF-producing transformations.
package pdfdoc

import (
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/extract"
	"github.com/nadzzz/proagent/internal/message"
)

// Layout is a resolved page layout in points.
type Layout struct {
	PageSize    string  `json:"page_size"`
	Orientation string  `json:"orientation"`
	Margin      float64 `json:"margin"`
}

// LayoutFrom reads page_size, orientation and margin from params,
// replacing invalid values with the defaults.
func LayoutFrom(params message.Params) Layout {
	l := Layout{
		PageSize:    strings.ToUpper(params.String("page_size", extract.PageA4)),
		Orientation: strings.ToLower(params.String("orientation", extract.Portrait)),
		Margin:      float64(max(0, min(catalog.MaxMargin, params.Int("margin", catalog.DefaultMargin)))),
	}
	switch l.PageSize {
	case extract.PageA4, extract.PageLetter, extract.PageLegal:
	default:
		l.PageSize = extract.PageA4
	}
	if l.Orientation != extract.Landscape {
		l.Orientation = extract.Portrait
	}
	return l
}

// New creates a document for l with matching margins and automatic page breaks.
func New(l Layout) *fpdf.Fpdf {
	orientation := "P"
	if l.Orientation == extract.Landscape {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "pt", strings.ToLower(l.PageSize), "")
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(true, l.Margin)
	pdf.SetCreator("proagent", true)
	return pdf
}

// Usable returns the printable width and height inside the margins.
func Usable(pdf *fpdf.Fpdf, l Layout) (w, h float64) {
	pw, ph := pdf.GetPageSize()
	return max(1, pw-2*l.Margin), max(1, ph-2*l.Margin)
}
