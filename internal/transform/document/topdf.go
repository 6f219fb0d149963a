package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
	"github.com/nadzzz/proagent/internal/transform/pdfdoc"
)

// Font sizes in points.
const (
	titleSize = 16
	bodySize  = 11
)

// PDFConverter implements word_to_pdf. Each .docx input becomes one PDF.
type PDFConverter struct {
	out *storage.OutputArea
	log *slog.Logger
}

// NewPDFConverter writes PDFs to out.
func NewPDFConverter(out *storage.OutputArea) *PDFConverter {
	return &PDFConverter{out: out, log: slog.Default()}
}

func (c *PDFConverter) Name() string { return catalog.WordToPDF }

// ConvertedFile describes one converted document.
type ConvertedFile struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Paragraphs int    `json:"paragraphs"`
	Headings   int    `json:"headings"`
}

// Execute converts every .docx among files.
func (c *PDFConverter) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := c.Name()
	inputs, err := transform.RequireFiles(op, files, ".docx")
	if err != nil {
		return nil, err
	}
	layout := pdfdoc.LayoutFrom(params)

	var (
		outputs   []string
		converted []ConvertedFile
	)
	for _, f := range inputs {
		cf, err := c.convertOne(op, f, layout)
		if err != nil {
			for _, o := range outputs {
				c.out.Remove(o)
			}
			return nil, err
		}
		outputs = append(outputs, cf.Output)
		converted = append(converted, cf)
	}

	return &transform.Result{
		Outputs: outputs,
		Message: fmt.Sprintf("Converted %d document(s) to PDF", len(converted)),
		Metadata: map[string]any{
			"files_processed": len(converted),
			"files":           converted,
			"settings":        layout,
		},
	}, nil
}

func (c *PDFConverter) convertOne(op string, f message.File, layout pdfdoc.Layout) (ConvertedFile, error) {
	base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	paras, err := ReadDocx(f.Path)
	if err != nil {
		return ConvertedFile{}, transform.ProcessingFailure(op, err, "reading %s", filepath.Base(f.Path))
	}

	pdf := pdfdoc.New(layout)
	pdf.SetTitle(base, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	cf := ConvertedFile{Source: filepath.Base(f.Path), Paragraphs: len(paras)}
	for _, p := range paras {
		size, style := float64(bodySize), ""
		if p.IsHeading() {
			size, style = titleSize, "B"
			cf.Headings++
		}
		pdf.SetFont("Helvetica", style, size)
		pdf.MultiCell(0, size*1.4, tr(p.Text), "", "L", false)
		pdf.Ln(size * 0.6)
	}
	if err := pdf.Error(); err != nil {
		return ConvertedFile{}, transform.ProcessingFailure(op, err, "rendering %s", cf.Source)
	}

	out, name, err := c.out.Create(base+"_converted", ".pdf")
	if err != nil {
		return ConvertedFile{}, transform.ProcessingFailure(op, err, "creating output")
	}
	if err := pdf.Output(out); err != nil {
		out.Close()
		os.Remove(out.Name())
		return ConvertedFile{}, transform.ProcessingFailure(op, err, "writing pdf")
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return ConvertedFile{}, transform.ProcessingFailure(op, err, "writing pdf")
	}

	cf.Output = name
	c.log.Debug("document converted", "source", cf.Source, "output", name, "paragraphs", cf.Paragraphs)
	return cf, nil
}
