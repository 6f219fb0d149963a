package main

import (
	"fmt"
	"log/slog"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/dispatch"
	"github.com/nadzzz/proagent/internal/reasoning"
	"github.com/nadzzz/proagent/internal/reasoning/gemini"
	"github.com/nadzzz/proagent/internal/reasoning/ollama"
	"github.com/nadzzz/proagent/internal/reasoning/openai"
	"github.com/nadzzz/proagent/internal/resolve"
	"github.com/nadzzz/proagent/internal/speech"
	"github.com/nadzzz/proagent/internal/speech/piper"
	"github.com/nadzzz/proagent/internal/speech/sarvam"
	"github.com/nadzzz/proagent/internal/speech/whisper"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
	"github.com/nadzzz/proagent/internal/transform/archive"
	"github.com/nadzzz/proagent/internal/transform/audio"
	"github.com/nadzzz/proagent/internal/transform/document"
	"github.com/nadzzz/proagent/internal/transform/images"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg        *config.Config
	out        *storage.OutputArea
	uploads    *storage.Uploads
	resolver   *resolve.Resolver
	registry   *transform.Registry
	dispatcher *dispatch.Dispatcher
}

func build(cfg *config.Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out, err := storage.NewOutputArea(cfg.Storage.OutputDir)
	if err != nil {
		return nil, err
	}
	uploads, err := storage.NewUploads(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(newReasoning(cfg.Resolver),
		resolve.WithTimeout(cfg.Resolver.Timeout),
		resolve.WithRateLimit(cfg.Resolver.RateLimit, cfg.Resolver.Burst),
		resolve.WithLogger(logger),
	)
	registry := newRegistry(out, newTranscriber(cfg.Speech), newSynthesizer(cfg.Speech))

	return &app{
		cfg:        cfg,
		out:        out,
		uploads:    uploads,
		resolver:   resolver,
		registry:   registry,
		dispatcher: dispatch.New(resolver, registry, logger),
	}, nil
}

func newRegistry(out *storage.OutputArea, stt speech.Transcriber, tts speech.Synthesizer) *transform.Registry {
	return transform.NewRegistry(
		images.NewCompressor(out),
		document.NewPDFConverter(out),
		images.NewPDFConverter(out),
		archive.NewExtractor(out),
		archive.NewReplacer(out),
		audio.NewTranscriber(out, stt),
		audio.NewSynthesizer(out, tts),
	)
}

// newReasoning returns nil when no usable backend is configured; the
// resolver then always falls back to keyword resolution.
func newReasoning(cfg config.ResolverConfig) reasoning.Client {
	switch cfg.Backend {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			slog.Warn("gemini selected but no API key set, using keyword resolution only")
			return nil
		}
		slog.Info("using Gemini reasoning backend", "model", cfg.Gemini.Model)
		return gemini.New(cfg.Gemini)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			slog.Warn("openai selected but no API key set, using keyword resolution only")
			return nil
		}
		slog.Info("using OpenAI reasoning backend", "model", cfg.OpenAI.Model)
		return openai.New(cfg.OpenAI)
	case "ollama":
		slog.Info("using local reasoning backend", "endpoint", cfg.Ollama.Endpoint, "model", cfg.Ollama.Model)
		return ollama.New(cfg.Ollama)
	default:
		slog.Info("reasoning backend disabled, using keyword resolution only")
		return nil
	}
}

func newTranscriber(cfg config.SpeechConfig) speech.Transcriber {
	switch cfg.Transcriber {
	case "sarvam":
		if cfg.Sarvam.APIKey == "" {
			slog.Warn("sarvam transcriber selected but no API key set, speech_to_text disabled")
			return nil
		}
		return speech.Bound(sarvam.New(cfg.Sarvam), cfg.Timeout)
	case "whisper":
		slog.Info("using whisper transcriber", "endpoint", cfg.Whisper.Endpoint, "type", cfg.Whisper.Type)
		return speech.Bound(whisper.New(cfg.Whisper), cfg.Timeout)
	default:
		return nil
	}
}

func newSynthesizer(cfg config.SpeechConfig) speech.Synthesizer {
	switch cfg.Synthesizer {
	case "sarvam":
		if cfg.Sarvam.APIKey == "" {
			slog.Warn("sarvam synthesizer selected but no API key set, text_to_speech disabled")
			return nil
		}
		return speech.BoundSynthesizer(sarvam.New(cfg.Sarvam), cfg.Timeout)
	case "piper":
		slog.Info("using piper synthesizer", "endpoint", cfg.Piper.Endpoint)
		return speech.BoundSynthesizer(piper.New(cfg.Piper), cfg.Timeout)
	default:
		return nil
	}
}

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}
