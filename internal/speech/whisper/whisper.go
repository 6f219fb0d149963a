// Package whisper implements speech recognition against a self-hosted or
// hosted Whisper-compatible endpoint.
//
// Two flavors are supported:
//   - "openai": OpenAI-compatible /v1/audio/transcriptions (whisper.cpp
//     server, faster-whisper, OpenAI itself)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/speech"
)

// Transcriber implements speech.Transcriber for Whisper servers.
type Transcriber struct {
	endpoint  string
	flavor    string // "openai" or "asr"
	model     string
	apiKey    string
	vadFilter bool
	client    *http.Client
}

// New creates a Whisper transcriber from config.
func New(cfg config.WhisperConfig) *Transcriber {
	flavor := cfg.Type
	if flavor == "" {
		flavor = "openai"
	}
	return &Transcriber{
		endpoint:  cfg.Endpoint,
		flavor:    flavor,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		vadFilter: cfg.VADFilter,
		client:    &http.Client{},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "whisper" }

// Transcribe sends audio to the configured endpoint. Whisper takes
// ISO-639-1 codes, so "hi-IN" is sent as "hi".
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string, opts speech.TranscribeOpts) (*speech.Transcript, error) {
	if t.flavor == "asr" {
		return t.transcribeASR(ctx, audio, filename, opts)
	}
	return t.transcribeOpenAI(ctx, audio, filename, opts)
}

// transcribeASR handles the whisper-asr-webservice format.
// API: POST /asr?task=transcribe&language=hi&output=json&vad_filter=true
// Body: multipart/form-data with field "audio_file"
func (t *Transcriber) transcribeASR(ctx context.Context, audio []byte, filename string, opts speech.TranscribeOpts) (*speech.Transcript, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio_file", "audio"+ext(filename))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	writer.Close()

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.LanguageCode != "" {
		q.Set("language", speech.ISO639(opts.LanguageCode))
	}
	if t.vadFilter {
		q.Set("vad_filter", "true")
	}

	reqURL := t.endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	slog.Debug("whisper-asr request", "url", reqURL)
	return t.do(req)
}

// transcribeOpenAI handles OpenAI-compatible endpoints.
func (t *Transcriber) transcribeOpenAI(ctx context.Context, audio []byte, filename string, opts speech.TranscribeOpts) (*speech.Transcript, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+ext(filename))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	model := t.model
	if opts.Model != "" {
		model = opts.Model
	}
	if model != "" {
		_ = writer.WriteField("model", model)
	}
	if opts.LanguageCode != "" {
		_ = writer.WriteField("language", speech.ISO639(opts.LanguageCode))
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	return t.do(req)
}

func (t *Transcriber) do(req *http.Request) (*speech.Transcript, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("whisper transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("whisper transcription complete", "text_length", len(result.Text), "language", result.Language)
	return &speech.Transcript{Text: result.Text, LanguageCode: result.Language}, nil
}

func ext(filename string) string {
	if e := strings.ToLower(filepath.Ext(filename)); e != "" {
		return e
	}
	return ".wav"
}
