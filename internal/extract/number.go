package extract

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// NumberSpec describes a numeric parameter to look for.
type NumberSpec struct {
	// Units are lower-case words that must sit next to the number,
	// e.g. "quality" in "quality 80" or "80 quality", or "px" in "800px".
	Units []string

	// Suffixes may directly follow the number ("800px", "70%"). Any other
	// known suffix after a "unit N" match means N belongs to another
	// parameter.
	Suffixes []string

	Min, Max int
	Default  int

	// Percent accepts "80%" as this parameter when no unit word is found.
	Percent bool
}

var (
	Quality = NumberSpec{Units: []string{"quality"}, Suffixes: []string{"%"}, Min: 1, Max: 100, Default: 85, Percent: true}
	Width   = NumberSpec{Units: []string{"width", "wide", "max width", "max_width"}, Suffixes: pixelSuffixes, Min: 1, Max: 10000}
	Height  = NumberSpec{Units: []string{"height", "tall", "high", "max height", "max_height"}, Suffixes: pixelSuffixes, Min: 1, Max: 10000}
	Margin  = NumberSpec{Units: []string{"margin", "margins"}, Suffixes: append([]string{"pt", "points", "point"}, pixelSuffixes...), Min: 0, Max: 200, Default: 50}
)

var pixelSuffixes = []string{"px", "pixels", "pixel"}

// unitWords is every unit and suffix known to any spec, longest first so
// that "pixels" is tried before "px" and "pixel".
var unitWords = sync.OnceValue(func() []string {
	var words []string
	for _, s := range []NumberSpec{Quality, Width, Height, Margin} {
		words = append(words, s.Units...)
		words = append(words, s.Suffixes...)
	}
	slices.SortFunc(words, func(a, b string) int { return cmp.Or(len(b)-len(a), strings.Compare(a, b)) })
	return slices.Compact(words)
})

const signedInt = `(-?\d+)`

type unitPatterns struct {
	after, before *regexp.Regexp
}

var patternCache sync.Map // unit -> *unitPatterns

func patternsFor(unit string) *unitPatterns {
	if p, ok := patternCache.Load(unit); ok {
		return p.(*unitPatterns)
	}
	u := regexp.QuoteMeta(unit)
	p := &unitPatterns{
		// "quality 80", "quality: 80", "quality of 80", "quality to -5", "quality=80%"
		after: regexp.MustCompile(`(?:^|[^\p{L}])` + u + `\s*(?:[:=]|of|to|at|is)?\s*` + signedInt),
		// "80 quality", "80% quality", "1200px width"
		before: regexp.MustCompile(signedInt + `\s*(?:%|px|pt|points?|pixels?)?\s+` + u + `(?:[^\p{L}]|$)`),
	}
	actual, _ := patternCache.LoadOrStore(unit, p)
	return actual.(*unitPatterns)
}

// Number finds an integer adjacent to one of spec's unit words, clamped into
// [Min, Max]. ok is false when no number was found, in which case n is
// spec.Default.
func Number(prompt string, spec NumberSpec) (n int, ok bool) {
	lower := strings.ToLower(prompt)
	for _, unit := range spec.Units {
		p := patternsFor(unit)
		if loc := p.after.FindStringSubmatchIndex(lower); loc != nil && !foreignSuffix(lower[loc[3]:], spec) {
			if v, err := strconv.Atoi(lower[loc[2]:loc[3]]); err == nil {
				return clamp(v, spec), true
			}
		}
		if m := p.before.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return clamp(v, spec), true
			}
		}
	}
	if spec.Percent {
		if m := percent.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return clamp(v, spec), true
			}
		}
	}
	return spec.Default, false
}

// foreignSuffix reports whether rest, the text right after a number, marks
// that number as belonging to something other than spec: another spec's
// unit or suffix ("800px" for quality, "800 wide") or the "x600" of a
// WxH size.
func foreignSuffix(rest string, spec NumberSpec) bool {
	rest = strings.TrimLeft(rest, " \t")
	if r, size := utf8.DecodeRuneInString(rest); r == 'x' || r == '×' {
		if d, _ := utf8.DecodeRuneInString(strings.TrimLeft(rest[size:], " ")); unicode.IsDigit(d) {
			return true
		}
	}
	for _, w := range unitWords() {
		if !strings.HasPrefix(rest, w) {
			continue
		}
		if w != "%" && isWordRuneAt(rest, len(w)) {
			continue
		}
		return !slices.Contains(spec.Units, w) && !slices.Contains(spec.Suffixes, w)
	}
	return false
}

var percent = regexp.MustCompile(signedInt + `\s*%`)

// Dimensions finds "1280x720" style sizes.
var dimensions = regexp.MustCompile(`(\d{2,5})\s*[x×]\s*(\d{2,5})`)

// Dimensions returns width and height from a "WxH" token.
func Dimensions(prompt string) (w, h int, ok bool) {
	m := dimensions.FindStringSubmatch(strings.ToLower(prompt))
	if m == nil {
		return 0, 0, false
	}
	w, _ = strconv.Atoi(m[1])
	h, _ = strconv.Atoi(m[2])
	return clamp(w, Width), clamp(h, Height), true
}

func clamp(v int, spec NumberSpec) int {
	if spec.Max <= spec.Min {
		return v
	}
	return max(spec.Min, min(spec.Max, v))
}

func isWordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
