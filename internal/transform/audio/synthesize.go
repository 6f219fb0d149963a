package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/language"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/speech"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
	"github.com/nadzzz/proagent/internal/transform/document"
)

// TextExtensions are the plain-text inputs text_to_speech reads when no
// text parameter is given. .docx files are read as well.
var TextExtensions = []string{".txt", ".md"}

// Synthesizer implements text_to_speech.
type Synthesizer struct {
	out *storage.OutputArea
	tts speech.Synthesizer
	log *slog.Logger
}

// NewSynthesizer synthesizes with tts and writes audio to out. A nil tts
// makes every call fail with speech.ErrNotConfigured.
func NewSynthesizer(out *storage.OutputArea, tts speech.Synthesizer) *Synthesizer {
	return &Synthesizer{out: out, tts: tts, log: slog.Default()}
}

func (s *Synthesizer) Name() string { return catalog.TextToSpeech }

// Execute speaks the text parameter, or the content of the text and .docx
// files when the parameter is empty. The audio file is the primary output,
// followed by a summary.
func (s *Synthesizer) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := s.Name()
	text := strings.TrimSpace(params.String("text", ""))
	source := "prompt"
	if text == "" {
		var err error
		text, err = textFromFiles(files)
		if err != nil {
			return nil, transform.ProcessingFailure(op, err, "reading text input")
		}
		source = "files"
	}
	if text == "" {
		return nil, transform.InvalidInput(op, "no text provided: quote it in the prompt or upload a .txt/.docx file")
	}
	if s.tts == nil {
		return nil, transform.ProcessingFailure(op, speech.ErrNotConfigured, "no synthesizer")
	}

	lang, ok := language.Lookup(params.String("language", language.Default))
	if !ok {
		lang, _ = language.Lookup(language.Default)
	}

	a, err := s.tts.Synthesize(ctx, text, speech.SynthesizeOpts{LanguageCode: lang.Code})
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "synthesizing speech")
	}
	ext := a.Ext
	if ext == "" {
		ext = ".wav"
	}
	audioName, err := s.out.WriteFile("text_to_speech", ext, a.Data)
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "writing audio")
	}

	var b strings.Builder
	b.WriteString("Text-to-Speech Conversion Summary\n")
	b.WriteString("=================================\n\n")
	fmt.Fprintf(&b, "Language: %s (%s)\n", lang.Name, lang.Code)
	fmt.Fprintf(&b, "Backend: %s\n", s.tts.Name())
	fmt.Fprintf(&b, "Audio File: %s\n", audioName)
	fmt.Fprintf(&b, "Text Length: %d characters\n\n", len([]rune(text)))
	b.WriteString("Original Text:\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	b.WriteString(text)
	b.WriteString("\n" + strings.Repeat("-", 50) + "\n")
	summary, err := s.out.WriteFile("text_to_speech_summary", ".txt", []byte(b.String()))
	if err != nil {
		s.out.Remove(audioName)
		return nil, transform.ProcessingFailure(op, err, "writing summary")
	}

	s.log.Debug("speech synthesized", "language", lang.Name, "text_length", len(text), "audio_bytes", len(a.Data))
	return &transform.Result{
		Outputs: []string{audioName, summary},
		Message: fmt.Sprintf("Successfully converted text to speech in %s", lang.Name),
		Metadata: map[string]any{
			"language":      lang.Name,
			"language_code": lang.Code,
			"text_length":   len([]rune(text)),
			"text_source":   source,
			"format":        strings.TrimPrefix(ext, "."),
			"content_type":  a.ContentType,
			"summary":       summary,
		},
	}, nil
}

// textFromFiles concatenates the content of the existing text and .docx files.
func textFromFiles(files []message.File) (string, error) {
	var parts []string
	for _, f := range transform.FilesWithExt(files, append(TextExtensions, ".docx")...) {
		if !f.Exists() {
			continue
		}
		var (
			content string
			err     error
		)
		if strings.EqualFold(f.Ext, ".docx") {
			content, err = document.ExtractText(f.Path)
		} else {
			var data []byte
			data, err = os.ReadFile(f.Path)
			content = string(data)
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", filepath.Base(f.Path), err)
		}
		if c := strings.TrimSpace(content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
