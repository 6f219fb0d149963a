// Package archive implements the zip transformations: extract_files and
// replace_text.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nadzzz/proagent/internal/storage"
)

// MaxExpandedBytes bounds the total uncompressed size read from one archive.
const MaxExpandedBytes int64 = 1 << 30

var (
	errUnsafePath = errors.New("entry escapes extraction root")
	errTooLarge   = errors.New("archive expands beyond size limit")
)

// TextExtensions are the entry types replace_text rewrites.
var TextExtensions = []string{".txt", ".html", ".css", ".js", ".py", ".java", ".xml", ".json", ".md", ".csv"}

// IsText reports whether name has one of TextExtensions.
func IsText(name string) bool {
	return slices.Contains(TextExtensions, strings.ToLower(filepath.Ext(name)))
}

// entryPath maps a zip entry name under root, rejecting absolute names and
// any name that would land outside root.
func entryPath(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	p := filepath.Join(root, clean)
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}
	return p, nil
}

// openZip opens src. Non-local entry names are tolerated here and checked
// per entry by the caller.
func openZip(src string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(src)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return zr, nil
}

// extractAll unpacks src into root and returns the slash-separated relative
// paths of the regular files written.
func extractAll(src, root string) ([]string, error) {
	zr, err := openZip(src)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var (
		files  []string
		budget = MaxExpandedBytes
	)
	for _, f := range zr.File {
		dest, err := entryPath(root, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			// Symlinks and devices are skipped.
			continue
		}
		n, err := extractFile(f, dest, budget)
		if err != nil {
			return nil, err
		}
		budget -= n
		rel, _ := filepath.Rel(root, dest)
		files = append(files, filepath.ToSlash(rel))
	}
	slices.Sort(files)
	return files, nil
}

func extractFile(f *zip.File, dest string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", filepath.Dir(f.Name), err)
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", f.Name, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, budget+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", f.Name, err)
	}
	if n > budget {
		return n, errTooLarge
	}
	return n, nil
}

// writeSummary stores a plain-text report and returns its area-relative name.
func writeSummary(out *storage.OutputArea, prefix, title string, lines []string) (string, error) {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	return out.WriteFile(prefix, ".txt", []byte(b.String()))
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
