// Package extract pulls typed parameters out of free-form prompts.
//
// Every extractor is a pure function. Extractors that cannot find a value
// return a documented default instead of failing.
package extract

import (
	"regexp"
	"strings"

	"github.com/nadzzz/proagent/internal/language"
)

// DefaultFind and DefaultReplace are the replacement pair returned when a
// prompt contains no recognizable replace phrase. They are placeholders
// carried over from the deployment this service was built for, not an
// inference about what the user meant.
const (
	DefaultFind    = "IITM"
	DefaultReplace = "IIT Madras"
)

// quotePairs are the recognized delimiters, tried together so that the
// earliest opening delimiter in the prompt wins.
var quotePairs = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`“([^”]+)”`),
	regexp.MustCompile(`«([^»]+)»`),
	regexp.MustCompile(`(?:^|[^\p{L}\p{N}])'([^']+)'(?:[^\p{L}\p{N}]|$)`),
	regexp.MustCompile(`\[([^\]]+)\]`),
}

// QuotedSpan returns the first span enclosed by matching quotes or square
// brackets. Single quotes only count when they are not part of a word, so
// apostrophes in "don't" are ignored.
func QuotedSpan(prompt string) (string, bool) {
	best, bestAt := "", -1
	for _, re := range quotePairs {
		loc := re.FindStringSubmatchIndex(prompt)
		if loc == nil {
			continue
		}
		span := strings.TrimSpace(prompt[loc[2]:loc[3]])
		if span == "" {
			continue
		}
		if bestAt == -1 || loc[2] < bestAt {
			best, bestAt = span, loc[2]
		}
	}
	return best, bestAt != -1
}

// AfterColon returns the trimmed text after the first colon, used as a
// secondary source for text payloads ("say this: hello world").
func AfterColon(prompt string) (string, bool) {
	_, after, ok := strings.Cut(prompt, ":")
	if !ok {
		return "", false
	}
	after = strings.Trim(strings.TrimSpace(after), `"'`)
	return after, after != ""
}

// replacePatterns are tried in order; the first that matches wins.
var replacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\breplace[\s"'“”]+(.+?)[\s"'“”]+with[\s"'“”]+(.+)`),
	regexp.MustCompile(`(?i)\bchange[\s"'“”]+(.+?)[\s"'“”]+to[\s"'“”]+(.+)`),
	regexp.MustCompile(`(?i)\bsubstitute[\s"'“”]+(.+?)[\s"'“”]+with[\s"'“”]+(.+)`),
	regexp.MustCompile(`(?i)\bswap[\s"'“”]+(.+?)[\s"'“”]+for[\s"'“”]+(.+)`),
}

// trailingClause cuts off context that follows the replacement value,
// as in "replace a with b in all files" or "replace a with b in notes.txt".
var trailingClause = regexp.MustCompile(`(?i)\s+(?:in|inside|across|throughout|within|for)\s+(?:(?:all|every|each|the|my|this|these|those)\b|[^\s"'“”]+\.[\p{L}\d]{1,5}(?:[^\p{L}\d]|$)).*$`)

// leadingNoise drops the object noun in "replace the word X with Y".
var leadingNoise = regexp.MustCompile(`(?i)^\s*(?:all\s+)?(?:the\s+)?(?:keyword|word|text|string|phrase)s?\s+(?:["'“]\s*)?(\S)`)

// ReplacePair extracts (old, new) from phrases such as "replace X with Y"
// or "change X to Y". Case is preserved. When no pattern matches it returns
// DefaultFind, DefaultReplace and matched=false.
func ReplacePair(prompt string) (old, replacement string, matched bool) {
	for _, re := range replacePatterns {
		m := re.FindStringSubmatch(prompt)
		if m == nil {
			continue
		}
		oldVal := cleanValue(leadingNoise.ReplaceAllString(cutAtQuote(m[1]), "$1"))
		newVal := cleanValue(trailingClause.ReplaceAllString(cutAtQuote(m[2]), ""))
		if oldVal == "" || newVal == "" {
			continue
		}
		return oldVal, newVal, true
	}
	return DefaultFind, DefaultReplace, false
}

// cutAtQuote ends a value at its closing double quote, dropping whatever
// follows it.
func cutAtQuote(s string) string {
	if i := strings.IndexAny(s, `"”`); i >= 0 {
		return s[:i]
	}
	return s
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".!?,;")
	return strings.Trim(s, ` "'“”`)
}

// CaseSensitive reports whether the prompt asks for case-sensitive matching.
func CaseSensitive(prompt string) bool {
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "case insensitive") || strings.Contains(lower, "case-insensitive") {
		return false
	}
	return strings.Contains(lower, "case sensitive") ||
		strings.Contains(lower, "case-sensitive") ||
		strings.Contains(lower, "exact case") ||
		strings.Contains(lower, "match case")
}

// FindLanguage returns the first language in table order whose name,
// native name or alias occurs in prompt.
func FindLanguage(prompt string) (language.Language, bool) {
	lower := strings.ToLower(prompt)
	for _, l := range language.All() {
		for _, kw := range l.Keywords() {
			if containsWord(lower, strings.ToLower(kw)) {
				return l, true
			}
		}
	}
	return language.Language{}, false
}

// Language returns the name of the language mentioned in prompt, or
// language.Default.
func Language(prompt string) string {
	if l, ok := FindLanguage(prompt); ok {
		return l.Name
	}
	return language.Default
}

// containsWord reports whether kw occurs in s without letters or digits
// directly on either side.
func containsWord(s, kw string) bool {
	if kw == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(s[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		if !isWordRuneBefore(s, i) && !isWordRuneAt(s, end) {
			return true
		}
		start = i + 1
	}
}
