// Package storage manages the upload and output areas on the local
// filesystem.
//
// The output area is shared by concurrent requests. Safety comes from
// names alone: every artifact gets a random suffix and is created with
// O_EXCL, so no invocation can overwrite another's output.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTraversal is returned for paths that escape their area.
var ErrTraversal = errors.New("invalid path: directory traversal detected")

// createAttempts bounds retries when a generated name already exists.
const createAttempts = 8

// OutputArea is the writable directory transformations write artifacts to.
type OutputArea struct {
	dir string
}

// NewOutputArea creates dir if needed.
func NewOutputArea(dir string) (*OutputArea, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &OutputArea{dir: abs}, nil
}

// Dir returns the absolute directory.
func (a *OutputArea) Dir() string { return a.dir }

// Path returns the absolute path of an area-relative name.
func (a *OutputArea) Path(rel string) string {
	return filepath.Join(a.dir, filepath.FromSlash(rel))
}

// NewName returns "<prefix>_<8 hex>.<ext>". ext may be given with or
// without the dot, or empty.
func NewName(prefix, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := sanitize(prefix) + "_" + suffix
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

// Create opens a new, uniquely named file in the area. The caller closes it.
// The returned name is relative to the area.
func (a *OutputArea) Create(prefix, ext string) (*os.File, string, error) {
	for range createAttempts {
		name := NewName(prefix, ext)
		f, err := os.OpenFile(filepath.Join(a.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("creating output file: %w", err)
		}
		return f, name, nil
	}
	return nil, "", fmt.Errorf("creating output file: no free name for %q after %d attempts", prefix, createAttempts)
}

// WriteFile stores data under a new unique name and returns that name.
func (a *OutputArea) WriteFile(prefix, ext string, data []byte) (string, error) {
	f, name, err := a.Create(prefix, ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return name, nil
}

// MkdirUnique creates a new, uniquely named directory and returns its
// relative name.
func (a *OutputArea) MkdirUnique(prefix string) (string, error) {
	for range createAttempts {
		name := NewName(prefix, "")
		err := os.Mkdir(filepath.Join(a.dir, name), 0o755)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("creating output dir: no free name for %q after %d attempts", prefix, createAttempts)
}

// Remove deletes an artifact, ignoring missing files.
func (a *OutputArea) Remove(rel string) {
	if p, err := a.Resolve(rel); err == nil {
		os.RemoveAll(p)
	}
}

// Resolve maps an area-relative path to an absolute one, rejecting paths
// that escape the area.
func (a *OutputArea) Resolve(rel string) (string, error) {
	return within(a.dir, rel)
}

// Writable checks that a file can be created in the area.
func (a *OutputArea) Writable() error {
	f, err := os.CreateTemp(a.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("output area not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// within joins rel onto base and verifies the result stays inside base.
func within(base, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", ErrTraversal
	}
	path := filepath.Join(base, filepath.FromSlash(rel))

	// Security: prevent directory traversal
	r, err := filepath.Rel(base, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) || r == "." {
		return "", ErrTraversal
	}
	return path, nil
}

// sanitize keeps prefixes to a safe filename alphabet.
func sanitize(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "output"
	}
	return b.String()
}
