package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/message"
)

func TestDefaultOrder(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		CompressImage, WordToPDF, ImageToPDF, ExtractFiles,
		ReplaceText, SpeechToText, TextToSpeech,
	}, c.IDs())
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(Entry{ID: "a"}, Entry{ID: "a"})
	require.Error(t, err)

	_, err = New(Entry{})
	require.Error(t, err)
}

func TestMatchFirstEntryWins(t *testing.T) {
	c := Default()
	tests := []struct {
		prompt string
		want   string
	}{
		{"please compress this photo", CompressImage},
		{"Convert Word to PDF", WordToPDF},
		{"turn these images to pdf", ImageToPDF},
		{"unzip the archive", ExtractFiles},
		{"replace apple with orange", ReplaceText},
		{"transcribe this recording", SpeechToText},
		{"say hello in tamil", TextToSpeech},
		// compress_image precedes word_to_pdf
		{"convert word to pdf with smaller margins", CompressImage},
		// extract_files precedes replace_text
		{"unzip and replace foo with bar", ExtractFiles},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			e, _, ok := c.Match(tt.prompt)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.ID)
		})
	}
}

func TestMatchWordStart(t *testing.T) {
	c := Default()
	_, _, ok := c.Match("write an essay")
	assert.False(t, ok, "say inside essay must not trigger")

	e, trigger, ok := c.Match("I am saying hi")
	require.True(t, ok)
	assert.Equal(t, TextToSpeech, e.ID)
	assert.Equal(t, "say", trigger)

	e, _, ok = c.Match("WORD   TO\tPDF")
	require.True(t, ok)
	assert.Equal(t, WordToPDF, e.ID)
}

func TestMatchNone(t *testing.T) {
	_, _, ok := Default().Match("hello there")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	out := Default().Render()
	for _, id := range Default().IDs() {
		assert.Contains(t, out, "- "+id+":")
	}
	assert.Contains(t, out, "quality (integer 1-100)")
	assert.Contains(t, out, "page_size (one of A4, LETTER, LEGAL)")
	assert.Contains(t, out, "parameters: none")
}

func TestNormalize(t *testing.T) {
	c := Default()
	compress, ok := c.Lookup(CompressImage)
	require.True(t, ok)

	t.Run("clamps and fills defaults", func(t *testing.T) {
		in := message.Params{"quality": 150.0, "format": "png"}
		out := compress.Normalize(in)
		assert.Equal(t, 100, out["quality"])
		assert.Equal(t, "PNG", out["format"])
		assert.NotContains(t, out, "max_width")
		assert.Equal(t, 150.0, in["quality"], "input must not be modified")
	})

	t.Run("floor", func(t *testing.T) {
		out := compress.Normalize(message.Params{"quality": -5})
		assert.Equal(t, 1, out["quality"])
	})

	t.Run("invalid choice uses default", func(t *testing.T) {
		out := compress.Normalize(message.Params{"format": "tiff", "quality": "abc"})
		assert.Equal(t, "JPEG", out["format"])
		assert.Equal(t, DefaultQuality, out["quality"])
	})

	t.Run("bool parsing", func(t *testing.T) {
		replace, _ := c.Lookup(ReplaceText)
		out := replace.Normalize(message.Params{"case_sensitive": "true", "old_keyword": "a", "new_keyword": "b"})
		assert.Equal(t, true, out["case_sensitive"])
	})

	t.Run("empty string dropped without default", func(t *testing.T) {
		replace, _ := c.Lookup(ReplaceText)
		out := replace.Normalize(message.Params{"old_keyword": "  "})
		assert.NotContains(t, out, "old_keyword")
		assert.Equal(t, false, out["case_sensitive"])
	})

	t.Run("unknown keys kept", func(t *testing.T) {
		out := compress.Normalize(message.Params{"extra": "x"})
		assert.Equal(t, "x", out["extra"])
	})
}
