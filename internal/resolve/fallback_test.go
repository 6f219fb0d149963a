package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/extract"
	"github.com/nadzzz/proagent/internal/message"
)

func TestFallbackEveryTriggerSelectsItsEntry(t *testing.T) {
	c := catalog.Default()
	entries := c.Entries()
	for i, e := range entries {
		for _, trigger := range e.Triggers {
			prompt := "please " + trigger + " for me"

			shadowed := false
			for _, earlier := range entries[:i] {
				if earlier.Matches(prompt) {
					shadowed = true
				}
			}
			if shadowed {
				continue
			}

			t.Run(e.ID+"/"+trigger, func(t *testing.T) {
				call := Fallback(prompt, nil)
				assert.Equal(t, e.ID, call.FunctionName)
				assert.Equal(t, ConfidenceMatched, call.Confidence)
				assert.Equal(t, message.StrategyFallback, call.Strategy)
			})
		}
	}
}

func TestFallbackNoMatch(t *testing.T) {
	t.Run("no files", func(t *testing.T) {
		call := Fallback("hello there", nil)
		assert.Equal(t, LastResort, call.FunctionName)
		assert.LessOrEqual(t, call.Confidence, 0.5)
		assert.True(t, catalog.Default().Has(call.FunctionName))
	})

	t.Run("with files", func(t *testing.T) {
		call := Fallback("do the thing", message.NewFiles([]string{"a.png"}))
		assert.Equal(t, LastResort, call.FunctionName)
		assert.Equal(t, ConfidenceFiles, call.Confidence)
		assert.Equal(t, catalog.DefaultQuality, call.Parameters["quality"])
	})

	t.Run("empty prompt", func(t *testing.T) {
		call := Fallback("", nil)
		assert.Equal(t, LastResort, call.FunctionName)
		assert.Equal(t, ConfidenceNoSignal, call.Confidence)
	})
}

func TestFallbackParameters(t *testing.T) {
	t.Run("compress clamps quality", func(t *testing.T) {
		call := Fallback("compress with quality 150 as png", nil)
		require.Equal(t, catalog.CompressImage, call.FunctionName)
		assert.Equal(t, 100, call.Parameters["quality"])
		assert.Equal(t, extract.FormatPNG, call.Parameters["format"])
	})

	t.Run("compress dimensions", func(t *testing.T) {
		call := Fallback("resize to 1280x720", nil)
		assert.Equal(t, 1280, call.Parameters["max_width"])
		assert.Equal(t, 720, call.Parameters["max_height"])
	})

	t.Run("compress keeps quality apart from size", func(t *testing.T) {
		call := Fallback("compress to 70% quality at 800x600", nil)
		require.Equal(t, catalog.CompressImage, call.FunctionName)
		assert.Equal(t, 70, call.Parameters["quality"])
		assert.Equal(t, 800, call.Parameters["max_width"])
		assert.Equal(t, 600, call.Parameters["max_height"])

		call = Fallback("compress at 70% quality 800px wide", nil)
		assert.Equal(t, 70, call.Parameters["quality"])
		assert.Equal(t, 800, call.Parameters["max_width"])
	})

	t.Run("replace drops file clause", func(t *testing.T) {
		call := Fallback("replace apple with orange in config.txt", nil)
		require.Equal(t, catalog.ReplaceText, call.FunctionName)
		assert.Equal(t, "orange", call.Parameters["new_keyword"])
	})

	t.Run("pdf layout", func(t *testing.T) {
		call := Fallback("convert word to pdf, landscape on letter paper, margin 20", nil)
		require.Equal(t, catalog.WordToPDF, call.FunctionName)
		assert.Equal(t, extract.PageLetter, call.Parameters["page_size"])
		assert.Equal(t, extract.Landscape, call.Parameters["orientation"])
		assert.Equal(t, 20, call.Parameters["margin"])
	})

	t.Run("replace pair", func(t *testing.T) {
		call := Fallback("replace apple with orange", nil)
		require.Equal(t, catalog.ReplaceText, call.FunctionName)
		assert.Equal(t, "apple", call.Parameters["old_keyword"])
		assert.Equal(t, "orange", call.Parameters["new_keyword"])
		assert.Equal(t, false, call.Parameters["case_sensitive"])
	})

	t.Run("replace default pair", func(t *testing.T) {
		call := Fallback("find and replace in these files", nil)
		require.Equal(t, catalog.ReplaceText, call.FunctionName)
		assert.Equal(t, extract.DefaultFind, call.Parameters["old_keyword"])
		assert.Equal(t, extract.DefaultReplace, call.Parameters["new_keyword"])
	})

	t.Run("speech to text auto", func(t *testing.T) {
		call := Fallback("transcribe this", nil)
		assert.Equal(t, catalog.LanguageAuto, call.Parameters["language"])

		call = Fallback("transcribe this tamil clip", nil)
		assert.Equal(t, "tamil", call.Parameters["language"])
	})

	t.Run("text to speech", func(t *testing.T) {
		call := Fallback(`say "vanakkam" in tamil`, nil)
		require.Equal(t, catalog.TextToSpeech, call.FunctionName)
		assert.Equal(t, "vanakkam", call.Parameters["text"])
		assert.Equal(t, "tamil", call.Parameters["language"])

		call = Fallback("read aloud: good morning", nil)
		assert.Equal(t, "good morning", call.Parameters["text"])
		assert.Equal(t, "hindi", call.Parameters["language"])
	})

	t.Run("extract has no parameters", func(t *testing.T) {
		call := Fallback("extract files from this", nil)
		require.Equal(t, catalog.ExtractFiles, call.FunctionName)
		assert.Empty(t, call.Parameters)
	})
}

func TestFallbackDeterministic(t *testing.T) {
	files := message.NewFiles([]string{"x.zip"})
	a := Fallback("replace foo with bar", files)
	b := Fallback("replace foo with bar", files)
	assert.Equal(t, a, b)
}
