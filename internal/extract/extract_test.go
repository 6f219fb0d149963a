package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotedSpan(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
		ok     bool
	}{
		{"double", `say "hello world" please`, "hello world", true},
		{"curly", `speak “namaste”`, "namaste", true},
		{"guillemets", `read «bonjour» aloud`, "bonjour", true},
		{"single", `say 'good morning' in tamil`, "good morning", true},
		{"brackets", `voice over [welcome home]`, "welcome home", true},
		{"earliest wins", `say [first] then "second"`, "first", true},
		{"apostrophe ignored", `don't say anything`, "", false},
		{"empty quotes", `say ""`, "", false},
		{"none", `say hello`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := QuotedSpan(tt.prompt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAfterColon(t *testing.T) {
	got, ok := AfterColon("read this aloud: the meeting is at five")
	assert.True(t, ok)
	assert.Equal(t, "the meeting is at five", got)

	_, ok = AfterColon("no colon here")
	assert.False(t, ok)

	_, ok = AfterColon("trailing:   ")
	assert.False(t, ok)
}

func TestReplacePair(t *testing.T) {
	tests := []struct {
		prompt   string
		old, new string
		matched  bool
	}{
		{"replace apple with orange", "apple", "orange", true},
		{`Replace "IITM" with "IIT Madras" in all files`, "IITM", "IIT Madras", true},
		{"change colour to color", "colour", "color", true},
		{"substitute Foo Bar with Baz.", "Foo Bar", "Baz", true},
		{"swap cats for dogs", "cats", "dogs", true},
		{"replace the word 'draft' with 'final'", "draft", "final", true},
		{"replace word apple with pear in every file", "apple", "pear", true},
		{"replace apple with orange in config.txt", "apple", "orange", true},
		{`change "v1.2" to "v1.3" inside release_notes.md.`, "v1.2", "v1.3", true},
		{"replace http with https for site.zip please", "http", "https", true},
		{"find and fix the typos", DefaultFind, DefaultReplace, false},
		{"", DefaultFind, DefaultReplace, false},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			old, repl, matched := ReplacePair(tt.prompt)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.old, old)
			assert.Equal(t, tt.new, repl)
		})
	}
}

func TestCaseSensitive(t *testing.T) {
	assert.True(t, CaseSensitive("replace a with b, case sensitive"))
	assert.True(t, CaseSensitive("match case please"))
	assert.False(t, CaseSensitive("replace a with b case-insensitive"))
	assert.False(t, CaseSensitive("replace a with b"))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "tamil", Language("say hello in Tamil"))
	assert.Equal(t, "gujarati", Language("ગુજરાતી માં બોલો"))
	assert.Equal(t, "odia", Language("speak in oriya"))
	assert.Equal(t, "hindi", Language("say hello"))
	// "english" is later in the table than "hindi".
	assert.Equal(t, "hindi", Language("translate english to hindi"))
	// No partial-word matches.
	assert.Equal(t, "hindi", Language("speak in englishman style"))

	_, ok := FindLanguage("nothing here")
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		prompt string
		spec   NumberSpec
		want   int
		ok     bool
	}{
		{"compress with quality 70", Quality, 70, true},
		{"quality: 150", Quality, 100, true},
		{"set quality to -5", Quality, 1, true},
		{"use 60 quality", Quality, 60, true},
		{"compress to 40%", Quality, 40, true},
		{"compress it", Quality, 85, false},
		{"resize to width 800px", Width, 800, true},
		{"make it 600px height", Height, 600, true},
		{"margin 20", Margin, 20, true},
		{"margin 900", Margin, 200, true},
		{"no margin info", Margin, 50, false},
		{"70% quality 800px wide", Quality, 70, true},
		{"70% quality 800px wide", Width, 800, true},
		{"compress to 70% quality at 800x600", Quality, 70, true},
		{"quality 70 at 800x600", Quality, 70, true},
		{"quality 70% please", Quality, 70, true},
		{"60 quality, width 1024 pixels", Width, 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got, ok := Number(tt.prompt, tt.spec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensions(t *testing.T) {
	w, h, ok := Dimensions("resize to 1280x720")
	assert.True(t, ok)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	_, _, ok = Dimensions("resize a bit")
	assert.False(t, ok)
}

func TestChoices(t *testing.T) {
	assert.Equal(t, PageLetter, PageSize("use letter paper"))
	assert.Equal(t, PageLegal, PageSize("LEGAL size"))
	assert.Equal(t, PageA4, PageSize("whatever"))

	assert.Equal(t, Landscape, Orientation("landscape please"))
	assert.Equal(t, Portrait, Orientation("nothing"))

	assert.Equal(t, FormatPNG, ImageFormat("save as png"))
	assert.Equal(t, FormatWEBP, ImageFormat("to WebP"))
	assert.Equal(t, FormatAuto, ImageFormat("keep format"))
	assert.Equal(t, FormatJPEG, ImageFormat("compress"))
}

func TestNumberPatternsAreCompiledOnce(t *testing.T) {
	first := patternsFor("quality")
	Number("quality 70", Quality)
	assert.Same(t, first, patternsFor("quality"))
	assert.NotSame(t, first, patternsFor("margin"))
}
