package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/config"
)

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		reply   string
		wantKey string
	}{
		{"generate", "/api/generate", `{"response":"{\"a\":1}"}`, "prompt"},
		{"chat", "/v1/chat/completions", `{"choices":[{"message":{"content":"{\"a\":1}"}}]}`, "messages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.path, r.URL.Path)
				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Contains(t, body, tt.wantKey)
				assert.Equal(t, "llama3", body["model"])
				w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			got, err := New(config.OllamaConfig{Endpoint: srv.URL + tt.path}).Complete(t.Context(), "hi")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, got)
		})
	}
}

func TestExtractContentRawFallback(t *testing.T) {
	assert.Equal(t, "plain words", extractContent([]byte("plain words")))
}
