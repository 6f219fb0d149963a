// Package sarvam implements speech recognition and synthesis with the
// Sarvam AI REST API.
//
// Both directions authenticate with the "api-subscription-key" header.
// Recognition posts multipart audio to /speech-to-text; synthesis posts
// JSON to /text-to-speech and receives base64 WAV audio.
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/speech"
)

const (
	defaultBaseURL  = "https://api.sarvam.ai"
	defaultSTTModel = "saarika:v2"
)

// Client talks to Sarvam AI. It implements both speech.Transcriber and
// speech.Synthesizer.
type Client struct {
	apiKey   string
	baseURL  string
	sttModel string
	ttsModel string
	speaker  string
	client   *http.Client
}

// New creates a Sarvam client from config.
func New(cfg config.SarvamConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.STTModel
	if model == "" {
		model = defaultSTTModel
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  base,
		sttModel: model,
		ttsModel: cfg.TTSModel,
		speaker:  cfg.Speaker,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "sarvam" }

// Transcribe sends audio to the speech-to-text endpoint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string, opts speech.TranscribeOpts) (*speech.Transcript, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	model := c.sttModel
	if opts.Model != "" {
		model = opts.Model
	}
	_ = writer.WriteField("model", model)
	if opts.LanguageCode != "" {
		_ = writer.WriteField("language_code", opts.LanguageCode)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("api-subscription-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sarvam transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("sarvam transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Transcript   string `json:"transcript"`
		LanguageCode string `json:"language_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("sarvam transcription complete", "text_length", len(result.Transcript), "language", opts.LanguageCode)
	return &speech.Transcript{Text: result.Transcript, LanguageCode: result.LanguageCode}, nil
}

type ttsRequest struct {
	Text               string `json:"text"`
	TargetLanguageCode string `json:"target_language_code"`
	Model              string `json:"model,omitempty"`
	Speaker            string `json:"speaker,omitempty"`
}

// Synthesize converts text with the text-to-speech endpoint.
func (c *Client) Synthesize(ctx context.Context, text string, opts speech.SynthesizeOpts) (*speech.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	speaker := c.speaker
	if opts.Voice != "" {
		speaker = opts.Voice
	}
	bodyBytes, err := json.Marshal(ttsRequest{
		Text:               text,
		TargetLanguageCode: opts.LanguageCode,
		Model:              c.ttsModel,
		Speaker:            speaker,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("api-subscription-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sarvam tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("sarvam tts failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Audios []string `json:"audios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding tts response: %w", err)
	}
	if len(result.Audios) == 0 || result.Audios[0] == "" {
		return nil, fmt.Errorf("no audio data received from sarvam")
	}
	data, err := base64.StdEncoding.DecodeString(result.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}

	slog.Debug("sarvam synthesis complete", "text_length", len(text), "audio_bytes", len(data), "language", opts.LanguageCode)
	return &speech.Audio{Data: data, ContentType: "audio/wav", Ext: ".wav"}, nil
}
