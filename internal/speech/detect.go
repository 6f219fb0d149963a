package speech

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nadzzz/proagent/internal/language"
)

// ErrNoTranscript is returned when no attempt produced any text.
var ErrNoTranscript = errors.New("no language produced a transcript")

// Hypothesis is one transcription attempt under an assumed language.
type Hypothesis struct {
	Language language.Language
	Text     string
	Score    float64
	Err      error
}

// Detect transcribes audio under each candidate language in order and
// returns the attempts ranked by score, highest first. Ties keep candidate
// order. Attempts stop early only when one scores 1.0 or ctx is done.
func Detect(ctx context.Context, t Transcriber, audio []byte, filename string, candidates []language.Language) []Hypothesis {
	hyps := make([]Hypothesis, 0, len(candidates))
	for _, l := range candidates {
		if ctx.Err() != nil {
			break
		}
		h := Hypothesis{Language: l}
		tr, err := t.Transcribe(ctx, audio, filename, TranscribeOpts{LanguageCode: l.Code})
		if err != nil {
			h.Err = err
		} else {
			h.Text = strings.TrimSpace(tr.Text)
			h.Score = l.Score(h.Text)
		}
		hyps = append(hyps, h)
		if h.Score >= 1.0 {
			break
		}
	}
	slices.SortStableFunc(hyps, func(a, b Hypothesis) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hyps
}

// Best returns the highest ranked hypothesis with text. hyps must be ranked
// as Detect returns them.
func Best(hyps []Hypothesis) (Hypothesis, error) {
	var errs []error
	for _, h := range hyps {
		if h.Err == nil && h.Text != "" {
			return h, nil
		}
		if h.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Language.Name, h.Err))
		}
	}
	return Hypothesis{}, errors.Join(append([]error{ErrNoTranscript}, errs...)...)
}

// Recognition is the outcome of Recognize.
type Recognition struct {
	Text       string            `json:"text"`
	Language   language.Language `json:"-"`
	Confidence float64           `json:"confidence"`
	Detected   bool              `json:"detected"`
	Attempts   int               `json:"attempts"`
}

// Recognize transcribes audio in the named language, or detects it over
// the full language table when name is Auto. Unknown names fall back to
// the default language.
func Recognize(ctx context.Context, t Transcriber, audio []byte, filename, name string) (Recognition, error) {
	if strings.EqualFold(name, Auto) {
		hyps := Detect(ctx, t, audio, filename, language.All())
		best, err := Best(hyps)
		if err != nil {
			return Recognition{Attempts: len(hyps)}, err
		}
		return Recognition{
			Text:       best.Text,
			Language:   best.Language,
			Confidence: best.Score,
			Detected:   true,
			Attempts:   len(hyps),
		}, nil
	}

	l, ok := language.Lookup(name)
	if !ok {
		l, _ = language.Lookup(language.Default)
	}
	tr, err := t.Transcribe(ctx, audio, filename, TranscribeOpts{LanguageCode: l.Code})
	if err != nil {
		return Recognition{Language: l, Attempts: 1}, err
	}
	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return Recognition{Language: l, Attempts: 1}, ErrNoTranscript
	}
	return Recognition{Text: text, Language: l, Confidence: l.Score(text), Attempts: 1}, nil
}
