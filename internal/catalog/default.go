package catalog

import (
	"github.com/nadzzz/proagent/internal/extract"
	"github.com/nadzzz/proagent/internal/language"
)

// Default parameter values shared by the fallback resolver and the
// transformations.
const (
	DefaultQuality = 85
	DefaultMargin  = 50
	MaxDimension   = 10000
	MaxMargin      = 200

	// LanguageAuto asks speech_to_text to detect the language.
	LanguageAuto = "auto"
)

// ImageExts are the image types compress_image and image_to_pdf accept.
var ImageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif", ".tif", ".tiff"}

var (
	pageSizeParam = ParamSpec{
		Name: "page_size", Kind: KindChoice, Hint: "Page size",
		Choices: []string{extract.PageA4, extract.PageLetter, extract.PageLegal}, Default: extract.PageA4,
	}
	orientationParam = ParamSpec{
		Name: "orientation", Kind: KindChoice, Hint: "Page orientation",
		Choices: []string{extract.Portrait, extract.Landscape}, Default: extract.Portrait,
	}
	marginParam = ParamSpec{
		Name: "margin", Kind: KindInt, Hint: "Page margin in points",
		Min: 0, Max: MaxMargin, Default: DefaultMargin,
	}
)

// Default returns the built-in catalog in its documented order.
func Default() *Catalog {
	c, err := New(defaultEntries()...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultEntries() []Entry {
	return []Entry{
		{
			ID:          CompressImage,
			Description: "Compress image files to reduce file size while maintaining quality",
			Params: []ParamSpec{
				{Name: "quality", Kind: KindInt, Hint: "Image quality", Min: 1, Max: 100, Default: DefaultQuality},
				{Name: "max_width", Kind: KindInt, Hint: "Maximum width in pixels (optional)", Min: 1, Max: MaxDimension},
				{Name: "max_height", Kind: KindInt, Hint: "Maximum height in pixels (optional)", Min: 1, Max: MaxDimension},
				{
					Name: "format", Kind: KindChoice, Hint: "Output format",
					Choices: []string{extract.FormatAuto, extract.FormatJPEG, extract.FormatPNG, extract.FormatWEBP},
					Default: extract.FormatJPEG,
				},
			},
			Triggers:  []string{"compress", "reduce size", "smaller", "optimize", "quality", "resize"},
			InputExts: ImageExts,
		},
		{
			ID:          WordToPDF,
			Description: "Convert Word documents (.docx) to PDF format",
			Params:      []ParamSpec{pageSizeParam, orientationParam, marginParam},
			Triggers:    []string{"word to pdf", "docx to pdf", "convert word", "document to pdf"},
			InputExts:   []string{".docx"},
		},
		{
			ID:          ImageToPDF,
			Description: "Convert image files to PDF format, one page per image",
			Params:      []ParamSpec{pageSizeParam, orientationParam, marginParam},
			Triggers:    []string{"image to pdf", "images to pdf", "photo to pdf", "picture to pdf", "img to pdf"},
			InputExts:   ImageExts,
		},
		{
			ID:          ExtractFiles,
			Description: "Extract and analyze all types of files from zip archives",
			Triggers: []string{
				"extract files", "unzip files", "get files", "extract data",
				"analyze archive", "extract csv", "unzip csv", "unzip",
			},
			InputExts: []string{".zip"},
		},
		{
			ID:          ReplaceText,
			Description: "Extract archives and replace text/keywords in all text files",
			Params: []ParamSpec{
				{Name: "old_keyword", Kind: KindString, Hint: "Text to find and replace"},
				{Name: "new_keyword", Kind: KindString, Hint: "Replacement text"},
				{Name: "case_sensitive", Kind: KindBool, Hint: "Whether replacement is case sensitive", Default: false},
			},
			Triggers: []string{
				"replace text", "find and replace", "change keyword",
				"substitute text", "replace word", "replace",
			},
			InputExts: []string{".zip"},
		},
		{
			ID:          SpeechToText,
			Description: "Transcribe audio files to text in the speaker's native script",
			Params: []ParamSpec{
				{
					Name: "language", Kind: KindChoice, Hint: "Spoken language, or auto to detect",
					Choices: append([]string{LanguageAuto}, language.Names()...), Default: LanguageAuto,
				},
			},
			Triggers:  []string{"speech to text", "audio to text", "transcribe", "transcription", "voice to text"},
			InputExts: []string{".wav", ".mp3", ".m4a", ".flac", ".aac", ".ogg", ".webm"},
		},
		{
			ID:          TextToSpeech,
			Description: "Convert text (from the prompt or from .txt/.docx files) to spoken audio",
			Params: []ParamSpec{
				{Name: "text", Kind: KindString, Hint: "Literal text to speak (optional when a text file is uploaded)"},
				{
					Name: "language", Kind: KindChoice, Hint: "Language to speak",
					Choices: language.Names(), Default: language.Default,
				},
			},
			Triggers:  []string{"text to speech", "read aloud", "speak", "voice over", "say"},
			InputExts: []string{".txt", ".docx"},
		},
	}
}
