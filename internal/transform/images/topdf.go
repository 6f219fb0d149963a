package images

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
	"github.com/nadzzz/proagent/internal/transform/pdfdoc"
)

// PDFConverter implements image_to_pdf: one page per image, scaled to fit
// inside the margins and never upscaled.
type PDFConverter struct {
	out *storage.OutputArea
	log *slog.Logger
}

// NewPDFConverter writes PDFs to out.
func NewPDFConverter(out *storage.OutputArea) *PDFConverter {
	return &PDFConverter{out: out, log: slog.Default()}
}

func (c *PDFConverter) Name() string { return catalog.ImageToPDF }

// Execute renders every image among files into a single PDF.
func (c *PDFConverter) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := c.Name()
	inputs, err := transform.RequireFiles(op, files, Extensions...)
	if err != nil {
		return nil, err
	}

	layout := pdfdoc.LayoutFrom(params)
	pdf := pdfdoc.New(layout)
	pdf.SetTitle("Images", false)
	availW, availH := pdfdoc.Usable(pdf, layout)

	for i, f := range inputs {
		img, err := decode(op, f)
		if err != nil {
			return nil, err
		}

		// fpdf only understands JPEG/PNG/GIF, so every image is re-encoded.
		var buf bytes.Buffer
		imageType := "JPG"
		if hasAlpha(img) {
			imageType = "PNG"
			err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
		} else {
			err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95))
		}
		if err != nil {
			return nil, transform.ProcessingFailure(op, err, "re-encoding %s", f.Path)
		}

		opts := fpdf.ImageOptions{ImageType: imageType}
		imgName := fmt.Sprintf("img%d", i)
		pdf.RegisterImageOptionsReader(imgName, opts, &buf)

		b := img.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		scale := min(availW/w, availH/h, 1.0)
		w, h = w*scale, h*scale

		pdf.AddPage()
		x := layout.Margin + (availW-w)/2
		pdf.ImageOptions(imgName, x, layout.Margin, w, h, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, transform.ProcessingFailure(op, err, "building pdf")
	}

	f, name, err := c.out.Create("images_to_pdf", ".pdf")
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "creating output")
	}
	if err := pdf.Output(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, transform.ProcessingFailure(op, err, "writing pdf")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, transform.ProcessingFailure(op, err, "writing pdf")
	}

	c.log.Debug("images converted to pdf", "output", name, "pages", len(inputs))
	return &transform.Result{
		Outputs: []string{name},
		Message: fmt.Sprintf("Converted %d image(s) to PDF", len(inputs)),
		Metadata: map[string]any{
			"files_processed": len(inputs),
			"pages":           pdf.PageCount(),
			"settings":        layout,
		},
	}, nil
}
