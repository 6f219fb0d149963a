package sarvam

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/speech"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-subscription-key"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "saarika:v2", r.FormValue("model"))
		assert.Equal(t, "ta-IN", r.FormValue("language_code"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, "audio.mp3", hdr.Filename)
		assert.Equal(t, "RIFFDATA", string(data))

		json.NewEncoder(w).Encode(map[string]string{"transcript": "வணக்கம்", "language_code": "ta-IN"})
	}))
	defer srv.Close()

	c := New(config.SarvamConfig{APIKey: "secret", BaseURL: srv.URL + "/"})
	tr, err := c.Transcribe(t.Context(), []byte("RIFFDATA"), "greeting.MP3", speech.TranscribeOpts{LanguageCode: "ta-IN"})
	require.NoError(t, err)
	assert.Equal(t, "வணக்கம்", tr.Text)
	assert.Equal(t, "ta-IN", tr.LanguageCode)
}

func TestTranscribeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(config.SarvamConfig{BaseURL: srv.URL}).Transcribe(t.Context(), nil, "a.wav", speech.TranscribeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestSynthesize(t *testing.T) {
	wav := []byte("RIFF....WAVE")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech", r.URL.Path)
		var req ttsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "नमस्ते", req.Text)
		assert.Equal(t, "hi-IN", req.TargetLanguageCode)
		assert.Equal(t, "meera", req.Speaker)
		json.NewEncoder(w).Encode(map[string]any{"audios": []string{base64.StdEncoding.EncodeToString(wav)}})
	}))
	defer srv.Close()

	c := New(config.SarvamConfig{BaseURL: srv.URL, Speaker: "meera"})
	a, err := c.Synthesize(t.Context(), "नमस्ते", speech.SynthesizeOpts{LanguageCode: "hi-IN"})
	require.NoError(t, err)
	assert.Equal(t, wav, a.Data)
	assert.Equal(t, ".wav", a.Ext)
}

func TestSynthesizeWithoutAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audios": []}`))
	}))
	defer srv.Close()

	c := New(config.SarvamConfig{BaseURL: srv.URL})
	_, err := c.Synthesize(t.Context(), "hi", speech.SynthesizeOpts{})
	assert.Error(t, err)

	_, err = c.Synthesize(t.Context(), "  ", speech.SynthesizeOpts{})
	assert.Error(t, err)
}
