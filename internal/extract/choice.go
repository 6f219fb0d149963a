package extract

import "strings"

// Page sizes.
const (
	PageA4     = "A4"
	PageLetter = "LETTER"
	PageLegal  = "LEGAL"
)

// Orientations.
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// Image formats.
const (
	FormatAuto = "AUTO"
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
	FormatWEBP = "WEBP"
)

type keywordChoice struct {
	value    string
	keywords []string
}

var (
	pageSizes = []keywordChoice{
		{PageLetter, []string{"letter"}},
		{PageLegal, []string{"legal"}},
		{PageA4, []string{"a4"}},
	}
	orientations = []keywordChoice{
		{Landscape, []string{"landscape", "horizontal", "wide page"}},
		{Portrait, []string{"portrait", "vertical"}},
	}
	imageFormats = []keywordChoice{
		{FormatPNG, []string{"png"}},
		{FormatWEBP, []string{"webp"}},
		{FormatJPEG, []string{"jpeg", "jpg"}},
		{FormatAuto, []string{"same format", "keep format", "original format"}},
	}
)

func pick(prompt string, choices []keywordChoice, def string) string {
	lower := strings.ToLower(prompt)
	for _, c := range choices {
		for _, kw := range c.keywords {
			if containsWord(lower, kw) {
				return c.value
			}
		}
	}
	return def
}

// PageSize returns A4, LETTER or LEGAL; A4 when none is named.
func PageSize(prompt string) string { return pick(prompt, pageSizes, PageA4) }

// Orientation returns portrait or landscape; portrait when none is named.
func Orientation(prompt string) string { return pick(prompt, orientations, Portrait) }

// ImageFormat returns the requested output format; JPEG when none is named.
func ImageFormat(prompt string) string { return pick(prompt, imageFormats, FormatJPEG) }
