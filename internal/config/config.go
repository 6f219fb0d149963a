// Package config handles loading and validating the proagent configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the proagent daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port" validate:"min=1,max=65535"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"min=1,max=65535"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"min=1,max=65535"`
	Swagger bool `mapstructure:"swagger"` // serve /swagger/
}

// StorageConfig locates the upload and output areas.
type StorageConfig struct {
	UploadDir       string        `mapstructure:"upload_dir" validate:"required"`
	OutputDir       string        `mapstructure:"output_dir" validate:"required"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"min=1"`
	CleanupMaxAge   time.Duration `mapstructure:"cleanup_max_age" validate:"gte=0"`  // 0 disables cleanup
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gte=0"` // 0 disables cleanup
}

// ResolverConfig selects and configures the reasoning service.
type ResolverConfig struct {
	Backend   string        `mapstructure:"backend" validate:"oneof=gemini openai ollama none"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gte=0"` // requests per second, 0 = unlimited
	Burst     int           `mapstructure:"burst" validate:"gte=0"`
	Gemini    GeminiConfig  `mapstructure:"gemini"`
	OpenAI    OpenAIConfig  `mapstructure:"openai"`
	Ollama    OllamaConfig  `mapstructure:"ollama"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig holds OpenAI (or compatible) chat API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OllamaConfig holds self-hosted LLM settings.
type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"` // /api/generate or /v1/chat/completions
	Model    string `mapstructure:"model"`
}

// SpeechConfig selects the speech backends.
type SpeechConfig struct {
	Transcriber string        `mapstructure:"transcriber" validate:"oneof=sarvam whisper none"`
	Synthesizer string        `mapstructure:"synthesizer" validate:"oneof=sarvam piper none"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Sarvam      SarvamConfig  `mapstructure:"sarvam"`
	Whisper     WhisperConfig `mapstructure:"whisper"`
	Piper       PiperConfig   `mapstructure:"piper"`
}

// SarvamConfig holds Sarvam AI settings.
type SarvamConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	STTModel string `mapstructure:"stt_model"`
	TTSModel string `mapstructure:"tts_model"`
	Speaker  string `mapstructure:"speaker"`
}

// WhisperConfig holds Whisper-compatible transcription settings.
type WhisperConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Type      string `mapstructure:"type" validate:"omitempty,oneof=openai asr"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	VADFilter bool   `mapstructure:"vad_filter"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// Endpoints maps ISO-639-1 codes to per-language Wyoming endpoints and
// takes precedence; Endpoint is the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"` // ISO-639-1 code -> voice model
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads the configuration from .env, file, environment variables and
// defaults. If configFile is non-empty it is used directly; otherwise the
// search order is ./proagent.yaml, ./configs/proagent.yaml,
// /etc/proagent/proagent.yaml.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("proagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/proagent")
	}

	// Environment variables: PROAGENT_RESOLVER_BACKEND, PROAGENT_STORAGE_OUTPUT_DIR, etc.
	v.SetEnvPrefix("PROAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve "${VAR}" references in secrets.
	cfg.Resolver.Gemini.APIKey = resolveEnvRef(cfg.Resolver.Gemini.APIKey)
	cfg.Resolver.OpenAI.APIKey = resolveEnvRef(cfg.Resolver.OpenAI.APIKey)
	cfg.Speech.Sarvam.APIKey = resolveEnvRef(cfg.Speech.Sarvam.APIKey)
	cfg.Speech.Whisper.APIKey = resolveEnvRef(cfg.Speech.Whisper.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.swagger", true)
	v.SetDefault("storage.upload_dir", "data/uploads")
	v.SetDefault("storage.output_dir", "data/outputs")
	v.SetDefault("storage.max_upload_bytes", 50<<20)
	v.SetDefault("storage.cleanup_max_age", "24h")
	v.SetDefault("storage.cleanup_interval", "1h")
	v.SetDefault("resolver.backend", "gemini")
	v.SetDefault("resolver.timeout", "15s")
	v.SetDefault("resolver.rate_limit", 0)
	v.SetDefault("resolver.burst", 1)
	v.SetDefault("resolver.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("resolver.gemini.model", "gemini-1.5-flash")
	v.SetDefault("resolver.gemini.base_url", "")
	v.SetDefault("resolver.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("resolver.openai.model", "gpt-4o-mini")
	v.SetDefault("resolver.openai.base_url", "")
	v.SetDefault("resolver.ollama.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("resolver.ollama.model", "llama3")
	v.SetDefault("speech.transcriber", "sarvam")
	v.SetDefault("speech.synthesizer", "sarvam")
	v.SetDefault("speech.timeout", "60s")
	v.SetDefault("speech.sarvam.api_key", "${SARVAM_API_KEY}")
	v.SetDefault("speech.sarvam.base_url", "https://api.sarvam.ai")
	v.SetDefault("speech.sarvam.stt_model", "saarika:v2")
	v.SetDefault("speech.sarvam.tts_model", "")
	v.SetDefault("speech.sarvam.speaker", "")
	v.SetDefault("speech.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("speech.whisper.type", "openai")
	v.SetDefault("speech.whisper.model", "")
	v.SetDefault("speech.whisper.api_key", "")
	v.SetDefault("speech.whisper.vad_filter", false)
	v.SetDefault("speech.piper.endpoint", "localhost:10200")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "proagent")
}

// Validate checks enums and ranges.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" with the value of that env var.
// Unset variables resolve to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	slog.SetDefault(slog.New(NewHandler(cfg, os.Stdout)))
}

// NewHandler builds the slog handler described by cfg.
func NewHandler(cfg LoggingConfig, w *os.File) slog.Handler {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
