package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/extract"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
)

// Default bounds applied when no max_width/max_height is given.
const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
)

// Compressor implements compress_image.
type Compressor struct {
	out *storage.OutputArea
	log *slog.Logger
}

// NewCompressor writes compressed images to out.
func NewCompressor(out *storage.OutputArea) *Compressor {
	return &Compressor{out: out, log: slog.Default()}
}

func (c *Compressor) Name() string { return catalog.CompressImage }

// FileStats describes one compressed file.
type FileStats struct {
	Source         string  `json:"source"`
	Output         string  `json:"output"`
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Ratio          float64 `json:"compression_percentage"`
	OriginalDims   string  `json:"original_dimensions"`
	NewDims        string  `json:"new_dimensions"`
	Format         string  `json:"format"`
	Retried        bool    `json:"retried,omitempty"`
	Note           string  `json:"note,omitempty"`
}

type compressSettings struct {
	quality   int
	maxWidth  int
	maxHeight int
	format    string
}

func settingsFrom(params message.Params) compressSettings {
	s := compressSettings{
		quality:   max(1, min(100, params.Int("quality", catalog.DefaultQuality))),
		maxWidth:  params.Int("max_width", DefaultMaxWidth),
		maxHeight: params.Int("max_height", DefaultMaxHeight),
		format:    strings.ToUpper(params.String("format", extract.FormatJPEG)),
	}
	if s.maxWidth <= 0 {
		s.maxWidth = DefaultMaxWidth
	}
	if s.maxHeight <= 0 {
		s.maxHeight = DefaultMaxHeight
	}
	switch s.format {
	case extract.FormatAuto, extract.FormatJPEG, extract.FormatPNG, extract.FormatWEBP:
	default:
		s.format = extract.FormatJPEG
	}
	return s
}

// Execute compresses every image among files. Non-image files are ignored.
func (c *Compressor) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := c.Name()
	inputs, err := transform.RequireFiles(op, files, Extensions...)
	if err != nil {
		return nil, err
	}
	s := settingsFrom(params)

	var (
		outputs []string
		stats   []FileStats
	)
	for _, f := range inputs {
		st, err := c.compressOne(op, f, s)
		if err != nil {
			for _, o := range outputs {
				c.out.Remove(o)
			}
			return nil, err
		}
		outputs = append(outputs, st.Output)
		stats = append(stats, st)
	}

	var before, after int64
	var ratioSum float64
	for _, st := range stats {
		before += st.OriginalSize
		after += st.CompressedSize
		ratioSum += st.Ratio
	}
	avg := ratioSum / float64(len(stats))

	return &transform.Result{
		Outputs: outputs,
		Message: fmt.Sprintf("Compressed %d image(s), average reduction %.1f%%", len(stats), avg),
		Metadata: map[string]any{
			"files_processed":                len(stats),
			"average_compression_percentage": round1(avg),
			"total_size_before":              before,
			"total_size_after":               after,
			"total_space_saved":              before - after,
			"files":                          stats,
			"settings": map[string]any{
				"quality":        s.quality,
				"max_dimensions": fmt.Sprintf("%dx%d", s.maxWidth, s.maxHeight),
				"format":         s.format,
			},
		},
	}, nil
}

func (c *Compressor) compressOne(op string, f message.File, s compressSettings) (FileStats, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return FileStats{}, transform.ProcessingFailure(op, err, "reading %s", f.Path)
	}
	img, err := decode(op, f)
	if err != nil {
		return FileStats{}, err
	}
	st := FileStats{
		Source:       baseName(f.Path) + f.Ext,
		OriginalSize: info.Size(),
		OriginalDims: dims(img),
	}

	format := s.format
	switch format {
	case extract.FormatAuto:
		format = extract.FormatJPEG
		if hasAlpha(img) {
			format = extract.FormatPNG
		}
	case extract.FormatWEBP:
		// No pure-Go WEBP encoder is available; JPEG is the closest lossy format.
		format = extract.FormatJPEG
		st.Note = "webp encoding unsupported, wrote jpeg"
	}

	resized := imaging.Fit(img, s.maxWidth, s.maxHeight, imaging.Lanczos)
	data, err := encode(resized, format, s.quality)
	if err != nil {
		return FileStats{}, transform.ProcessingFailure(op, err, "encoding %s", st.Source)
	}

	if int64(len(data)) >= st.OriginalSize {
		resized = imaging.Fit(resized, max(1, s.maxWidth/2), max(1, s.maxHeight/2), imaging.Lanczos)
		format = extract.FormatJPEG
		data, err = encode(resized, format, max(1, s.quality/2))
		if err != nil {
			return FileStats{}, transform.ProcessingFailure(op, err, "re-encoding %s", st.Source)
		}
		st.Retried = true
	}

	ext := ".jpg"
	if format == extract.FormatPNG {
		ext = ".png"
	}
	name, err := c.out.WriteFile(baseName(f.Path)+"_compressed", ext, data)
	if err != nil {
		return FileStats{}, transform.ProcessingFailure(op, err, "writing output")
	}

	st.Output = name
	st.Format = format
	st.CompressedSize = int64(len(data))
	st.NewDims = dims(resized)
	if st.OriginalSize > 0 {
		st.Ratio = round1((1 - float64(st.CompressedSize)/float64(st.OriginalSize)) * 100)
	}

	c.log.Debug("image compressed",
		"source", st.Source,
		"output", name,
		"before", st.OriginalSize,
		"after", st.CompressedSize,
		"retried", st.Retried,
	)
	return st, nil
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == extract.FormatPNG {
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	return buf.Bytes(), err
}

func dims(img image.Image) string {
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
