package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, "gemini", cfg.Resolver.Backend)
	assert.Equal(t, 15*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, "from-env", cfg.Resolver.Gemini.APIKey)
	assert.Equal(t, 24*time.Hour, cfg.Storage.CleanupMaxAge)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("PROAGENT_RESOLVER_BACKEND", "ollama")
	t.Setenv("MY_SARVAM_KEY", "sk-123")

	path := writeConfig(t, `
resolver:
  backend: openai
  timeout: 3s
  rate_limit: 2.5
speech:
  transcriber: whisper
  sarvam:
    api_key: ${MY_SARVAM_KEY}
  piper:
    endpoints:
      hi: hindi-host:10200
storage:
  output_dir: /tmp/out
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Resolver.Backend, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Resolver.Timeout)
	assert.InDelta(t, 2.5, cfg.Resolver.RateLimit, 1e-9)
	assert.Equal(t, "whisper", cfg.Speech.Transcriber)
	assert.Equal(t, "sk-123", cfg.Speech.Sarvam.APIKey)
	assert.Equal(t, "hindi-host:10200", cfg.Speech.Piper.Endpoints["hi"])
	assert.Equal(t, "/tmp/out", cfg.Storage.OutputDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"backend", "resolver:\n  backend: bard\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"port", "transports:\n  http:\n    port: 70000\n"},
		{"timeout", "speech:\n  timeout: 0s\n"},
		{"whisper type", "speech:\n  whisper:\n    type: grpc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "resolver: [unclosed\n"))
	assert.ErrorContains(t, err, "reading config")
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("SOME_KEY", "value")
	assert.Equal(t, "value", resolveEnvRef("${SOME_KEY}"))
	assert.Equal(t, "", resolveEnvRef("${PROAGENT_TEST_UNSET_KEY}"))
	assert.Equal(t, "literal", resolveEnvRef("literal"))
}
