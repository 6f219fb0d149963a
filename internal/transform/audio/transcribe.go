// Package audio implements the speech transformations: speech_to_text
// and text_to_speech.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/speech"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
)

// Extensions are the audio types speech_to_text accepts.
var Extensions = []string{".wav", ".mp3", ".m4a", ".flac", ".aac", ".ogg", ".webm"}

// Transcriber implements speech_to_text.
type Transcriber struct {
	out *storage.OutputArea
	stt speech.Transcriber
	log *slog.Logger
}

// NewTranscriber transcribes with stt and writes transcripts to out.
// A nil stt makes every call fail with speech.ErrNotConfigured.
func NewTranscriber(out *storage.OutputArea, stt speech.Transcriber) *Transcriber {
	return &Transcriber{out: out, stt: stt, log: slog.Default()}
}

func (t *Transcriber) Name() string { return catalog.SpeechToText }

// FileTranscript is the outcome for one audio file.
type FileTranscript struct {
	File         string  `json:"file"`
	Success      bool    `json:"success"`
	Text         string  `json:"transcribed_text"`
	Language     string  `json:"language,omitempty"`
	LanguageCode string  `json:"language_code,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Detected     bool    `json:"detected,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Execute transcribes every audio file. It succeeds when at least one
// file was transcribed.
func (t *Transcriber) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	op := t.Name()
	inputs, err := transform.RequireFiles(op, files, Extensions...)
	if err != nil {
		return nil, err
	}
	if t.stt == nil {
		return nil, transform.ProcessingFailure(op, speech.ErrNotConfigured, "no transcriber")
	}
	lang := strings.ToLower(params.String("language", speech.Auto))

	var (
		results []FileTranscript
		errs    []error
		ok      int
	)
	for _, f := range inputs {
		ft := t.transcribeOne(ctx, f, lang)
		if ft.Success {
			ok++
		} else {
			errs = append(errs, fmt.Errorf("%s: %s", ft.File, ft.Error))
		}
		results = append(results, ft)
	}
	if ok == 0 {
		return nil, transform.ProcessingFailure(op, errors.Join(errs...), "no audio file could be transcribed")
	}

	name, err := t.out.WriteFile("speech_to_text", ".txt", []byte(renderTranscripts(lang, t.stt.Name(), results)))
	if err != nil {
		return nil, transform.ProcessingFailure(op, err, "writing transcript")
	}

	return &transform.Result{
		Outputs: []string{name},
		Message: fmt.Sprintf("Successfully transcribed %d out of %d audio files", ok, len(inputs)),
		Metadata: map[string]any{
			"transcription_results": results,
			"language":              lang,
			"backend":               t.stt.Name(),
			"files_processed":       len(inputs),
			"files_transcribed":     ok,
		},
	}, nil
}

func (t *Transcriber) transcribeOne(ctx context.Context, f message.File, lang string) FileTranscript {
	ft := FileTranscript{File: filepath.Base(f.Path)}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		ft.Error = err.Error()
		return ft
	}

	rec, err := speech.Recognize(ctx, t.stt, data, ft.File, lang)
	if err != nil {
		t.log.Warn("transcription failed", "file", ft.File, "language", lang, "error", err)
		ft.Error = err.Error()
		return ft
	}
	ft.Success = true
	ft.Text = rec.Text
	ft.Language = rec.Language.Name
	ft.LanguageCode = rec.Language.Code
	ft.Confidence = rec.Confidence
	ft.Detected = rec.Detected
	t.log.Debug("file transcribed", "file", ft.File, "language", ft.Language, "attempts", rec.Attempts)
	return ft
}

func renderTranscripts(lang, backend string, results []FileTranscript) string {
	var b strings.Builder
	b.WriteString("Speech-to-Text Transcription Results\n")
	b.WriteString("====================================\n\n")
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Backend: %s\n", backend)
	fmt.Fprintf(&b, "Total files processed: %d\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "File: %s\n", r.File)
		if r.Success {
			b.WriteString("Status: success\n")
			fmt.Fprintf(&b, "Language: %s (%s)\n", r.Language, r.LanguageCode)
			fmt.Fprintf(&b, "Transcript: %s\n", r.Text)
		} else {
			b.WriteString("Status: failed\n")
			fmt.Fprintf(&b, "Error: %s\n", r.Error)
		}
		b.WriteString("\n" + strings.Repeat("=", 50) + "\n\n")
	}
	return b.String()
}
