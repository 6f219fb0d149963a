package speech

import (
	"context"
	"time"

	"github.com/nadzzz/proagent/internal/metrics"
)

// Bound wraps t so that every call runs under timeout and is counted in
// the speech metrics. A zero timeout leaves calls unbounded.
func Bound(t Transcriber, timeout time.Duration) Transcriber {
	return &boundTranscriber{next: t, timeout: timeout}
}

// BoundSynthesizer is Bound for synthesizers.
func BoundSynthesizer(s Synthesizer, timeout time.Duration) Synthesizer {
	return &boundSynthesizer{next: s, timeout: timeout}
}

type boundTranscriber struct {
	next    Transcriber
	timeout time.Duration
}

func (b *boundTranscriber) Name() string { return b.next.Name() }

func (b *boundTranscriber) Transcribe(ctx context.Context, audio []byte, filename string, opts TranscribeOpts) (*Transcript, error) {
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	tr, err := b.next.Transcribe(ctx, audio, filename, opts)
	metrics.ObserveSpeech(b.next.Name(), "transcribe", err)
	return tr, err
}

type boundSynthesizer struct {
	next    Synthesizer
	timeout time.Duration
}

func (b *boundSynthesizer) Name() string { return b.next.Name() }

func (b *boundSynthesizer) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*Audio, error) {
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	a, err := b.next.Synthesize(ctx, text, opts)
	metrics.ObserveSpeech(b.next.Name(), "synthesize", err)
	return a, err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
