// Package speech defines the interfaces for speech recognition and synthesis.
//
// The audio transformations reach every speech backend (Sarvam AI, a
// Whisper-compatible server, Piper) through these two interfaces, so
// backends can be swapped in config and faked in tests.
package speech

import (
	"context"
	"errors"
)

// Auto asks for the spoken language to be detected.
const Auto = "auto"

// ErrNotConfigured is returned when an operation needs a backend that is
// disabled in config.
var ErrNotConfigured = errors.New("speech backend not configured")

// TranscribeOpts controls one transcription call.
type TranscribeOpts struct {
	// LanguageCode is the BCP-47 code (e.g., "hi-IN") of the spoken language.
	LanguageCode string

	// Model overrides the backend's default model.
	Model string
}

// Transcript is the result of one transcription call.
type Transcript struct {
	Text string

	// LanguageCode is the language reported by the backend, if any.
	LanguageCode string
}

// Transcriber converts audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "sarvam", "whisper").
	Name() string

	// Transcribe sends the audio to the backend. filename carries the
	// original extension, which some backends use to sniff the format.
	Transcribe(ctx context.Context, audio []byte, filename string, opts TranscribeOpts) (*Transcript, error)
}

// SynthesizeOpts controls one synthesis call.
type SynthesizeOpts struct {
	// LanguageCode is the BCP-47 code (e.g., "ta-IN") to select the voice.
	LanguageCode string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Audio is synthesized speech.
type Audio struct {
	Data []byte

	// ContentType is the MIME type of Data (e.g., "audio/wav").
	ContentType string

	// Ext is the file extension matching ContentType, with the dot.
	Ext string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*Audio, error)
}

// ISO639 returns the two-letter part of a BCP-47 code ("hi-IN" → "hi").
func ISO639(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == '-' || code[i] == '_' {
			return code[:i]
		}
	}
	return code
}
