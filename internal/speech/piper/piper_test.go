package piper

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/speech"
)

func TestEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, event{Type: "audio-chunk", Data: map[string]any{"rate": 16000}}, []byte{1, 2, 3}))

	evt, payload, err := readEvent(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "audio-chunk", evt.Type)
	assert.Equal(t, 16000, number(evt.Data, "rate", 0))
	assert.Equal(t, []byte{1, 2, 3}, payload)
}

func TestReadEventRejectsBadLengths(t *testing.T) {
	for _, header := range []string{
		"-1 0\n",
		"2 -5\n{}\n",
		"99999999999 0\n",
		"2 99999999999\n{}\n",
		"abc 0\n",
		"12\n",
	} {
		t.Run(header, func(t *testing.T) {
			_, _, err := readEvent(bufio.NewReader(strings.NewReader(header)))
			assert.Error(t, err)
		})
	}
}

func TestPCMToWAV(t *testing.T) {
	wav := pcmToWAV(make([]byte, 100), 16000, 1, 2)
	require.Len(t, wav, 144)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(100), binary.LittleEndian.Uint32(wav[40:44]))
}

// fakeServer accepts one connection, records the synthesize event and
// answers with a short audio stream.
func fakeServer(t *testing.T, got chan<- event) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		evt, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			return
		}
		got <- evt
		writeEvent(conn, event{Type: "audio-start", Data: map[string]any{"rate": 16000, "width": 2, "channels": 1}}, nil)
		writeEvent(conn, event{Type: "audio-chunk"}, []byte{0, 1, 0, 1})
		writeEvent(conn, event{Type: "audio-stop"}, nil)
	}()
	return "tcp://" + ln.Addr().String()
}

func TestSynthesize(t *testing.T) {
	got := make(chan event, 1)
	s := New(config.PiperConfig{Endpoint: fakeServer(t, got)})

	a, err := s.Synthesize(t.Context(), "नमस्ते", speech.SynthesizeOpts{LanguageCode: "hi-IN"})
	require.NoError(t, err)
	assert.Equal(t, ".wav", a.Ext)
	assert.Len(t, a.Data, 48)
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(a.Data[24:28]))

	evt := <-got
	assert.Equal(t, "synthesize", evt.Type)
	voice, _ := evt.Data["voice"].(map[string]any)
	assert.Equal(t, "hi_IN-pratham-medium", voice["name"])
}

func TestSynthesizeVoiceFallbackAndErrors(t *testing.T) {
	got := make(chan event, 1)
	s := New(config.PiperConfig{Endpoint: fakeServer(t, got)})

	_, err := s.Synthesize(t.Context(), "வணக்கம்", speech.SynthesizeOpts{LanguageCode: "ta-IN"})
	require.NoError(t, err)
	voice, _ := (<-got).Data["voice"].(map[string]any)
	assert.Equal(t, "en_US-lessac-medium", voice["name"], "languages without a voice use English")

	_, err = New(config.PiperConfig{}).Synthesize(t.Context(), "x", speech.SynthesizeOpts{})
	assert.ErrorContains(t, err, "no piper endpoint")

	_, err = s.Synthesize(t.Context(), "", speech.SynthesizeOpts{})
	assert.Error(t, err)
}
