// Package images implements the image transformations: compression and
// conversion of images to PDF.
package images

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the WEBP decoder

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/transform"
)

// Extensions are the image types both transformations accept.
var Extensions = catalog.ImageExts

func decode(op string, f message.File) (image.Image, error) {
	img, err := imaging.Open(f.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "decoding %s", filepath.Base(f.Path))
	}
	return img, nil
}

// hasAlpha reports whether img has any non-opaque pixel.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

func baseName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}
