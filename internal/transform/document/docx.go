// Package document reads Word (.docx) documents and implements word_to_pdf.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotDocx is returned when a file is not a readable .docx package.
var ErrNotDocx = errors.New("not a docx document")

// Paragraph is one body paragraph of a document.
type Paragraph struct {
	Text  string
	Style string // paragraph style id, e.g. "Heading1"
}

// IsHeading reports whether p should be rendered as a title: it carries a
// heading or title style, or it is a short all-caps line.
func (p Paragraph) IsHeading() bool {
	s := strings.ToLower(p.Style)
	if strings.HasPrefix(s, "heading") || s == "title" || s == "subtitle" {
		return true
	}
	return len([]rune(p.Text)) < 100 && isUpper(p.Text)
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if strings.ToUpper(string(r)) != strings.ToLower(string(r)) {
			if strings.ToUpper(string(r)) != string(r) {
				return false
			}
			cased = true
		}
	}
	return cased
}

// ReadDocx returns the non-empty body paragraphs of the document at path.
func ReadDocx(path string) ([]Paragraph, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening document part: %w", err)
		}
		defer rc.Close()
		return parseDocument(rc)
	}
	return nil, fmt.Errorf("%w: word/document.xml missing", ErrNotDocx)
}

// ExtractText returns the document's paragraphs joined by newlines.
func ExtractText(path string) (string, error) {
	paras, err := ReadDocx(path)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n"), nil
}

// parseDocument walks WordprocessingML, collecting text runs per paragraph.
func parseDocument(r io.Reader) ([]Paragraph, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []Paragraph
		cur    *Paragraph
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur = &Paragraph{}
				sb.Reset()
			case "pStyle":
				if cur != nil {
					cur.Style = attr(t, "val")
				}
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cur != nil {
					cur.Text = strings.TrimSpace(sb.String())
					if cur.Text != "" {
						paras = append(paras, *cur)
					}
				}
				cur = nil
			}
		case xml.CharData:
			if inText && cur != nil {
				sb.Write(t)
			}
		}
	}
	return paras, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
