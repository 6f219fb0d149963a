package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/reasoning"
)

func TestNewReasoning(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ResolverConfig
		want string
	}{
		{"gemini", config.ResolverConfig{Backend: "gemini", Gemini: config.GeminiConfig{APIKey: "k"}}, "gemini"},
		{"gemini without key", config.ResolverConfig{Backend: "gemini"}, ""},
		{"openai", config.ResolverConfig{Backend: "openai", OpenAI: config.OpenAIConfig{APIKey: "k"}}, "openai"},
		{"ollama", config.ResolverConfig{Backend: "ollama"}, "ollama"},
		{"none", config.ResolverConfig{Backend: "none"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newReasoning(tt.cfg)
			if tt.want == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, tt.want, reasoning.NameOf(c))
		})
	}
}

func TestNewSpeechBackends(t *testing.T) {
	cfg := config.SpeechConfig{Transcriber: "whisper", Synthesizer: "piper", Timeout: time.Second}
	stt := newTranscriber(cfg)
	require.NotNil(t, stt)
	assert.Equal(t, "whisper", stt.Name())
	tts := newSynthesizer(cfg)
	require.NotNil(t, tts)
	assert.Equal(t, "piper", tts.Name())

	assert.Nil(t, newTranscriber(config.SpeechConfig{Transcriber: "sarvam"}), "sarvam needs a key")
	assert.Nil(t, newSynthesizer(config.SpeechConfig{Synthesizer: "none"}))
}

func TestBuildRegistersEveryOperation(t *testing.T) {
	cfg := &config.Config{
		Storage:  config.StorageConfig{UploadDir: t.TempDir(), OutputDir: t.TempDir(), MaxUploadBytes: 1 << 20},
		Resolver: config.ResolverConfig{Backend: "none", Timeout: time.Second},
		Speech:   config.SpeechConfig{Transcriber: "none", Synthesizer: "none", Timeout: time.Second},
	}
	a, err := build(cfg, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, catalog.Default().IDs(), a.registry.Names())
}
