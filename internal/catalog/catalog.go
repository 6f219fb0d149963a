// Package catalog holds the fixed table of operations proagent can run,
// with their parameter schemas and the trigger phrases used for keyword
// resolution.
//
// Iteration order is significant: when a prompt matches triggers of more
// than one entry, the earliest entry wins. The order is
//
//	compress_image, word_to_pdf, image_to_pdf, extract_files,
//	replace_text, speech_to_text, text_to_speech
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Operation ids.
const (
	CompressImage = "compress_image"
	WordToPDF     = "word_to_pdf"
	ImageToPDF    = "image_to_pdf"
	ExtractFiles  = "extract_files"
	ReplaceText   = "replace_text"
	SpeechToText  = "speech_to_text"
	TextToSpeech  = "text_to_speech"
)

// Entry describes one supported operation.
type Entry struct {
	// ID is the operation id used as function_name.
	ID string `json:"id"`

	// Description is the human text shown to the reasoning service.
	Description string `json:"description"`

	// Params is the parameter schema in display order.
	Params []ParamSpec `json:"parameters"`

	// Triggers are lower-case phrases, in order, that select this entry.
	Triggers []string `json:"triggers"`

	// InputExts lists the file extensions the operation consumes.
	InputExts []string `json:"input_extensions,omitempty"`

	triggerRes []*regexp.Regexp
}

// Catalog is an immutable ordered set of entries.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// New builds a catalog from entries, keeping their order.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry with empty id")
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.ID)
		}
		e.Triggers = append([]string(nil), e.Triggers...)
		e.triggerRes = make([]*regexp.Regexp, len(e.Triggers))
		for i, t := range e.Triggers {
			t = strings.ToLower(strings.TrimSpace(t))
			e.Triggers[i] = t
			e.triggerRes[i] = triggerPattern(t)
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// triggerPattern matches a phrase that starts at a word boundary, so "say"
// matches "saying" but not "essay", and whitespace inside the phrase
// matches any run of whitespace.
func triggerPattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + strings.Join(words, `\s+`))
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns the operation ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ID
	}
	return ids
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether id is a catalog operation.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Match scans entries in order and returns the first whose triggers occur
// in prompt, together with the matching phrase.
func (c *Catalog) Match(prompt string) (Entry, string, bool) {
	lower := strings.ToLower(prompt)
	for _, e := range c.entries {
		if t, ok := e.matchTrigger(lower); ok {
			return e, t, true
		}
	}
	return Entry{}, "", false
}

// Matches reports whether any trigger of e occurs in prompt.
func (e Entry) Matches(prompt string) bool {
	_, ok := e.matchTrigger(strings.ToLower(prompt))
	return ok
}

func (e Entry) matchTrigger(lower string) (string, bool) {
	for i, re := range e.triggerRes {
		if re.MatchString(lower) {
			return e.Triggers[i], true
		}
	}
	return "", false
}

// Render lists the catalog as text for the reasoning prompt.
func (c *Catalog) Render() string {
	var b strings.Builder
	for _, e := range c.entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.ID, e.Description)
		if len(e.InputExts) > 0 {
			fmt.Fprintf(&b, "  inputs: %s\n", strings.Join(e.InputExts, ", "))
		}
		if len(e.Params) == 0 {
			b.WriteString("  parameters: none\n")
			continue
		}
		b.WriteString("  parameters:\n")
		for _, p := range e.Params {
			fmt.Fprintf(&b, "    - %s (%s): %s\n", p.Name, p.TypeHint(), p.Hint)
		}
	}
	return b.String()
}
