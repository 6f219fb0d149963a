// Package ollama implements reasoning.Client for self-hosted models.
//
// It supports Ollama's /api/generate and any OpenAI-compatible
// /v1/chat/completions endpoint (Ollama, vLLM, llama.cpp server). The
// format is chosen from the endpoint path.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/reasoning"
)

// Client sends prompts to a local LLM endpoint.
type Client struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a local client from config.
func New(cfg config.OllamaConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Client{endpoint: cfg.Endpoint, model: model, client: &http.Client{}}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "ollama" }

// Complete sends prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var reqBody map[string]any
	if strings.HasSuffix(c.endpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  c.model,
			"prompt": prompt,
			"stream": false,
			"format": "json",
		}
	} else {
		reqBody = map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": 0.1,
			"stream":      false,
		}
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}
	text := extractContent(data)
	if strings.TrimSpace(text) == "" {
		return "", reasoning.ErrEmptyReply
	}
	slog.Debug("local completion", "model", c.model, "reply_length", len(text))
	return text, nil
}

// extractContent reads either response shape, falling back to the raw body.
func extractContent(data []byte) string {
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	var genResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response
	}
	return string(data)
}
