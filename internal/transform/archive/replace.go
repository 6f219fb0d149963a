package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
)

// Replacer implements replace_text: every text entry of the first .zip has
// the find string replaced literally, and the archive is re-packed under a
// new name. The repacked zip is the primary output, followed by a summary.
type Replacer struct {
	out *storage.OutputArea
	log *slog.Logger
}

// NewReplacer writes rewritten archives to out.
func NewReplacer(out *storage.OutputArea) *Replacer {
	return &Replacer{out: out, log: slog.Default()}
}

func (r *Replacer) Name() string { return catalog.ReplaceText }

// Replacement describes one literal substitution.
type Replacement struct {
	Find          string `json:"find_text"`
	Replace       string `json:"replace_text"`
	CaseSensitive bool   `json:"case_sensitive"`

	re *regexp.Regexp
}

// NewReplacement builds a replacement; matching ignores case unless
// caseSensitive is set. The replace string is never expanded.
func NewReplacement(find, replace string, caseSensitive bool) Replacement {
	rp := Replacement{Find: find, Replace: replace, CaseSensitive: caseSensitive}
	if !caseSensitive {
		rp.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(find))
	}
	return rp
}

// Apply returns the rewritten content and the number of replacements.
func (rp Replacement) Apply(content string) (string, int) {
	if rp.Find == "" {
		return content, 0
	}
	if rp.re == nil {
		n := strings.Count(content, rp.Find)
		return strings.ReplaceAll(content, rp.Find, rp.Replace), n
	}
	n := len(rp.re.FindAllStringIndex(content, -1))
	if n == 0 {
		return content, 0
	}
	return rp.re.ReplaceAllLiteralString(content, rp.Replace), n
}

func replacementFrom(params message.Params) Replacement {
	find := params.String("old_keyword", "")
	if find == "" {
		find = params.String("find_text", "")
	}
	repl := params.String("new_keyword", "")
	if !params.Has("new_keyword") {
		repl = params.String("replace_text", "")
	}
	return NewReplacement(find, repl, params.Bool("case_sensitive", false))
}

// ModifiedFile records the replacements made in one entry.
type ModifiedFile struct {
	Path         string `json:"path"`
	Replacements int    `json:"replacements"`
}

// Execute rewrites the first archive among files.
func (r *Replacer) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := r.Name()
	zips, err := transform.RequireFiles(op, files, ".zip")
	if err != nil {
		return nil, err
	}
	rp := replacementFrom(params)
	if rp.Find == "" {
		return nil, transform.InvalidInput(op, "old_keyword is required")
	}
	src := zips[0]

	f, name, err := r.out.Create(baseName(src.Path)+"_replaced", ".zip")
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "creating output")
	}
	modified, scanned, err := rewrite(src.Path, f, rp)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, transform.ProcessingFailure(op, err, "rewriting %s", filepath.Base(src.Path))
	}

	total := 0
	lines := []string{
		"Source: " + filepath.Base(src.Path),
		fmt.Sprintf("Find text: '%s'", rp.Find),
		fmt.Sprintf("Replace text: '%s'", rp.Replace),
		fmt.Sprintf("Case sensitive: %t", rp.CaseSensitive),
		fmt.Sprintf("Text files scanned: %d", scanned),
		fmt.Sprintf("Modified files: %d", len(modified)),
		"",
		"Files modified:",
	}
	for _, m := range modified {
		total += m.Replacements
		lines = append(lines, fmt.Sprintf("- %s (%d)", m.Path, m.Replacements))
	}
	summary, err := writeSummary(r.out, "replacement_summary", "Text Replacement Summary", lines)
	if err != nil {
		r.out.Remove(name)
		return nil, transform.ProcessingFailure(op, err, "writing summary")
	}

	r.log.Debug("archive rewritten", "source", src.Path, "output", name, "modified", len(modified), "replacements", total)
	return &transform.Result{
		Outputs: []string{name, summary},
		Message: fmt.Sprintf("Replaced %d occurrence(s) in %d file(s)", total, len(modified)),
		Metadata: map[string]any{
			"source":             filepath.Base(src.Path),
			"replacement":        rp,
			"files_scanned":      scanned,
			"modified_files":     modified,
			"total_replacements": total,
			"summary":            summary,
		},
	}, nil
}

// rewrite copies every entry of src into w, applying rp to text entries.
func rewrite(src string, w io.Writer, rp Replacement) ([]ModifiedFile, int, error) {
	zr, err := openZip(src)
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	zw := zip.NewWriter(w)
	var (
		modified []ModifiedFile
		scanned  int
		budget   = MaxExpandedBytes
	)
	for _, f := range zr.File {
		hdr := f.FileHeader
		hdr.Extra = nil
		if f.FileInfo().IsDir() {
			if _, err := zw.CreateHeader(&hdr); err != nil {
				return nil, 0, fmt.Errorf("writing %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readEntry(f, budget)
		if err != nil {
			return nil, 0, err
		}
		budget -= int64(len(data))

		if IsText(f.Name) {
			scanned++
			if out, n := rp.Apply(string(data)); n > 0 {
				data = []byte(out)
				modified = append(modified, ModifiedFile{Path: f.Name, Replacements: n})
			}
		}

		hdr.Method = zip.Deflate
		ew, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, 0, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := ew.Write(data); err != nil {
			return nil, 0, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("finishing archive: %w", err)
	}
	return modified, scanned, nil
}

func readEntry(f *zip.File, budget int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if n > budget {
		return nil, errTooLarge
	}
	return buf.Bytes(), nil
}
