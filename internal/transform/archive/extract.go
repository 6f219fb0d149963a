package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
)

// Extractor implements extract_files. The first .zip among the inputs is
// unpacked into a fresh folder of the output area; the primary output is
// a summary listing the extracted files.
type Extractor struct {
	out *storage.OutputArea
	log *slog.Logger
}

// NewExtractor extracts into out.
func NewExtractor(out *storage.OutputArea) *Extractor {
	return &Extractor{out: out, log: slog.Default()}
}

func (e *Extractor) Name() string { return catalog.ExtractFiles }

// Execute extracts the first archive among files.
func (e *Extractor) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := e.Name()
	zips, err := transform.RequireFiles(op, files, ".zip")
	if err != nil {
		return nil, err
	}
	src := zips[0]

	folder, err := e.out.MkdirUnique("extracted")
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "creating extraction folder")
	}
	root, err := e.out.Resolve(folder)
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "resolving extraction folder")
	}

	extracted, err := extractAll(src.Path, root)
	if err != nil {
		e.out.Remove(folder)
		if errors.Is(err, errUnsafePath) {
			return nil, transform.InvalidInput(op, "archive %s rejected: %v", filepath.Base(src.Path), err)
		}
		return nil, transform.ProcessingFailure(op, err, "extracting %s", filepath.Base(src.Path))
	}

	lines := []string{
		"Source: " + filepath.Base(src.Path),
		fmt.Sprintf("Extracted files: %d", len(extracted)),
		"",
		"Files:",
	}
	for _, f := range extracted {
		lines = append(lines, "- "+f)
	}
	summary, err := writeSummary(e.out, "file_extraction_summary", "Extraction Summary", lines)
	if err != nil {
		e.out.Remove(folder)
		return nil, transform.ProcessingFailure(op, err, "writing summary")
	}

	e.log.Debug("archive extracted", "source", src.Path, "folder", folder, "files", len(extracted))
	return &transform.Result{
		Outputs: []string{summary, folder},
		Message: fmt.Sprintf("Extracted %d file(s) from %s", len(extracted), filepath.Base(src.Path)),
		Metadata: map[string]any{
			"source":           filepath.Base(src.Path),
			"extracted_folder": folder,
			"extracted_files":  extracted,
			"files_extracted":  len(extracted),
			"archives_ignored": len(zips) - 1,
		},
	}, nil
}
