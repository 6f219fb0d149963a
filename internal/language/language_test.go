package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableOrder(t *testing.T) {
	want := []string{
		"hindi", "gujarati", "tamil", "telugu", "bengali", "marathi",
		"punjabi", "kannada", "malayalam", "odia", "assamese", "english",
	}
	assert.Equal(t, want, Names())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Hindi", "hindi", true},
		{"ta-IN", "tamil", true},
		{"te", "telugu", true},
		{"ગુજરાતી", "gujarati", true},
		{"oriya", "odia", true},
		{"klingon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, ok := Lookup(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, l.Name)
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "bn-IN", Code("bengali"))
	assert.Equal(t, "hi-IN", Code("unknown"))
}

func TestScore(t *testing.T) {
	hindi, _ := Lookup("hindi")
	marathi, _ := Lookup("marathi")
	english, _ := Lookup("english")
	tamil, _ := Lookup("tamil")

	assert.Zero(t, hindi.Score("   "))

	// 6 runes: 0.5 + script bonus + 0.06
	assert.InDelta(t, 0.96, hindi.Score("नमस्ते"), 0.001)
	assert.InDelta(t, 0.86, marathi.Score("नमस्ते"), 0.001)

	// "hello" is ASCII: 0.5 + 0.2 + 0.05
	assert.InDelta(t, 0.75, english.Score("hello"), 0.001)

	// Wrong script earns no bonus.
	assert.InDelta(t, 0.55, tamil.Score("hello"), 0.001)

	long := "यह एक बहुत लंबा वाक्य है जो सौ अक्षरों से अधिक होना चाहिए ताकि लंबाई का बोनस पूरा मिले और स्कोर एक तक पहुंच जाए बिल्कुल"
	assert.Equal(t, 1.0, hindi.Score(long))
}
