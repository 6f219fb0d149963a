// Package language holds the closed table of languages understood by the
// speech pipeline and the prompt extractors.
package language

import (
	"math"
	"strings"
	"unicode"
)

// Default is the language used when a prompt names none.
const Default = "hindi"

// Language describes one supported language.
type Language struct {
	// Name is the lower-case English name used as the parameter value.
	Name string

	// Code is the BCP-47 code the speech service expects (e.g., "hi-IN").
	Code string

	// Native is the language's own name in its script.
	Native string

	// Aliases are additional prompt keywords such as alternate spellings.
	Aliases []string

	// Script is the Unicode block expected in transcripts, nil when the
	// transcript script says nothing about the language.
	Script *unicode.RangeTable

	// ScriptBonus is added to a detection score when Script is present
	// in the transcript.
	ScriptBonus float64

	// ASCIIBonus is added when the transcript is pure ASCII.
	ASCIIBonus float64
}

// table is ordered: it is both the prompt scan order and the
// auto-detection hypothesis order.
var table = []Language{
	{Name: "hindi", Code: "hi-IN", Native: "हिंदी", Aliases: []string{"हिन्दी"}, Script: unicode.Devanagari, ScriptBonus: 0.4},
	{Name: "gujarati", Code: "gu-IN", Native: "ગુજરાતી", Script: unicode.Gujarati, ScriptBonus: 0.4},
	{Name: "tamil", Code: "ta-IN", Native: "தமிழ்", Script: unicode.Tamil, ScriptBonus: 0.4},
	{Name: "telugu", Code: "te-IN", Native: "తెలుగు", Script: unicode.Telugu, ScriptBonus: 0.4},
	{Name: "bengali", Code: "bn-IN", Native: "বাংলা", Aliases: []string{"bangla"}, Script: unicode.Bengali, ScriptBonus: 0.4},
	{Name: "marathi", Code: "mr-IN", Native: "मराठी", Script: unicode.Devanagari, ScriptBonus: 0.3},
	{Name: "punjabi", Code: "pa-IN", Native: "ਪੰਜਾਬੀ", Script: unicode.Gurmukhi, ScriptBonus: 0.4},
	{Name: "kannada", Code: "kn-IN", Native: "ಕನ್ನಡ", Script: unicode.Kannada, ScriptBonus: 0.4},
	{Name: "malayalam", Code: "ml-IN", Native: "മലയാളം", Script: unicode.Malayalam, ScriptBonus: 0.4},
	{Name: "odia", Code: "or-IN", Native: "ଓଡ଼ିଆ", Aliases: []string{"oriya"}},
	{Name: "assamese", Code: "as-IN", Native: "অসমীয়া"},
	{Name: "english", Code: "en-IN", Native: "English", ASCIIBonus: 0.2},
}

// All returns the table in its fixed order. The slice is a copy.
func All() []Language {
	out := make([]Language, len(table))
	copy(out, table)
	return out
}

// Names returns the language names in table order.
func Names() []string {
	names := make([]string, len(table))
	for i, l := range table {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a language by name, native name, alias or code
// (case-insensitive). The bare ISO-639-1 prefix of a code also matches.
func Lookup(s string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Language{}, false
	}
	for _, l := range table {
		code := strings.ToLower(l.Code)
		if key == l.Name || key == code || key == code[:2] || key == strings.ToLower(l.Native) {
			return l, true
		}
		for _, a := range l.Aliases {
			if key == strings.ToLower(a) {
				return l, true
			}
		}
	}
	return Language{}, false
}

// Code returns the speech-service code for a language, falling back to the
// default language's code when the name is unknown.
func Code(name string) string {
	if l, ok := Lookup(name); ok {
		return l.Code
	}
	l, _ := Lookup(Default)
	return l.Code
}

// Keywords returns every prompt keyword for l: its name, native name and aliases.
func (l Language) Keywords() []string {
	kw := make([]string, 0, 2+len(l.Aliases))
	kw = append(kw, l.Name, l.Native)
	return append(kw, l.Aliases...)
}

// Score rates how well a transcript fits l: 0.5 base, the script or ASCII
// bonus, and a length bonus of up to 0.1. Empty text scores zero.
func (l Language) Score(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	score := 0.5
	switch {
	case l.Script != nil && containsScript(trimmed, l.Script):
		score += l.ScriptBonus
	case l.ASCIIBonus > 0 && isASCII(trimmed):
		score += l.ASCIIBonus
	}

	score += min(0.1, float64(len([]rune(trimmed)))/100)
	return min(1.0, math.Round(score*1000)/1000)
}

func containsScript(s string, rt *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
