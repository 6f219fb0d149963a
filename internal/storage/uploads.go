package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nadzzz/proagent/internal/message"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Uploads saves incoming files under uuid names.
type Uploads struct {
	dir      string
	maxBytes int64
}

// NewUploads creates dir if needed. maxBytes <= 0 disables the size limit.
func NewUploads(dir string, maxBytes int64) (*Uploads, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Uploads{dir: abs, maxBytes: maxBytes}, nil
}

// Dir returns the absolute upload directory.
func (u *Uploads) Dir() string { return u.dir }

// Save writes r to a new file named "<uuid><ext>", keeping the extension
// of the client-supplied filename.
func (u *Uploads) Save(filename string, r io.Reader) (message.File, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !validExt(ext) {
		ext = ""
	}
	path := filepath.Join(u.dir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return message.File{}, fmt.Errorf("creating upload: %w", err)
	}

	src := r
	if u.maxBytes > 0 {
		src = io.LimitReader(r, u.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && u.maxBytes > 0 && n > u.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return message.File{}, fmt.Errorf("saving upload %q: %w", filename, err)
	}
	return message.NewFile(path), nil
}

// Discard removes previously saved uploads. Files outside the upload
// directory are left alone.
func (u *Uploads) Discard(files []message.File) {
	for _, f := range files {
		if filepath.Dir(f.Path) == u.dir {
			os.Remove(f.Path)
		}
	}
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
