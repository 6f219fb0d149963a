package transform

import (
	"slices"
	"strings"

	"github.com/nadzzz/proagent/internal/message"
)

// FilesWithExt returns the files whose extension is one of exts, in order.
func FilesWithExt(files []message.File, exts ...string) []message.File {
	var out []message.File
	for _, f := range files {
		if slices.Contains(exts, strings.ToLower(f.Ext)) {
			out = append(out, f)
		}
	}
	return out
}

// RequireFiles returns the existing files with one of exts, or an
// invalid_input error naming what was expected.
func RequireFiles(op string, files []message.File, exts ...string) ([]message.File, error) {
	matched := FilesWithExt(files, exts...)
	var present []message.File
	for _, f := range matched {
		if f.Exists() {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		if len(matched) > 0 {
			return nil, InvalidInput(op, "uploaded %s file(s) not found on disk", strings.Join(exts, "/"))
		}
		return nil, InvalidInput(op, "no %s file provided", strings.Join(exts, "/"))
	}
	return present, nil
}
