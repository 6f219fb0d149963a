package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/reasoning"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Contents, 1) {
			assert.Equal(t, "pick one", req.Contents[0].Parts[0].Text)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"function_name\":"},{"text":"\"compress_image\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := New(config.GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL})
	got, err := c.Complete(t.Context(), "pick one")
	require.NoError(t, err)
	assert.Equal(t, `{"function_name":"compress_image"}`, got)
	assert.Equal(t, "gemini", reasoning.NameOf(c))
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{"status", http.StatusTooManyRequests, `{"error":"quota"}`, nil},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, reasoning.ErrEmptyReply},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, reasoning.ErrEmptyReply},
		{"garbage", http.StatusOK, `not json`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(config.GeminiConfig{BaseURL: srv.URL}).Complete(t.Context(), "x")
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}
