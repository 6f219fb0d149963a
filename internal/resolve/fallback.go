// Package resolve turns a free-text prompt into an executable call.
//
// Resolution has two tiers. The reasoning service is asked once; if it
// fails for any reason, the deterministic keyword resolver in this file
// produces the call instead.
package resolve

import (
	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/extract"
	"github.com/nadzzz/proagent/internal/message"
)

// Fallback confidences.
const (
	ConfidenceMatched  = 0.7
	ConfidenceFiles    = 0.5
	ConfidenceNoSignal = 0.3
)

// LastResort is the operation chosen when no trigger matches.
const LastResort = catalog.CompressImage

var defaultCatalog = catalog.Default()

// Fallback resolves prompt against the built-in catalog. It never fails.
func Fallback(prompt string, files []message.File) message.Call {
	return FallbackWith(defaultCatalog, prompt, files)
}

// FallbackWith resolves prompt against c: the first entry in catalog order
// with a matching trigger wins and its parameters are extracted from the
// prompt. With no match the last-resort operation is returned with a lower
// confidence.
func FallbackWith(c *catalog.Catalog, prompt string, files []message.File) message.Call {
	entry, _, ok := c.Match(prompt)
	confidence := ConfidenceMatched
	if !ok {
		entry, _ = c.Lookup(LastResort)
		confidence = ConfidenceNoSignal
		if len(files) > 0 {
			confidence = ConfidenceFiles
		}
	}

	return message.Call{
		FunctionName: entry.ID,
		Parameters:   entry.Normalize(extractParams(entry.ID, prompt)),
		Confidence:   confidence,
		Strategy:     message.StrategyFallback,
	}
}

// extractParams runs the extractors an operation needs.
func extractParams(id, prompt string) message.Params {
	p := message.Params{}
	switch id {
	case catalog.CompressImage:
		p["quality"], _ = extract.Number(prompt, extract.Quality)
		p["format"] = extract.ImageFormat(prompt)
		if w, h, ok := extract.Dimensions(prompt); ok {
			p["max_width"], p["max_height"] = w, h
		}
		if w, ok := extract.Number(prompt, extract.Width); ok {
			p["max_width"] = w
		}
		if h, ok := extract.Number(prompt, extract.Height); ok {
			p["max_height"] = h
		}

	case catalog.WordToPDF, catalog.ImageToPDF:
		p["page_size"] = extract.PageSize(prompt)
		p["orientation"] = extract.Orientation(prompt)
		p["margin"], _ = extract.Number(prompt, extract.Margin)

	case catalog.ReplaceText:
		old, repl, _ := extract.ReplacePair(prompt)
		p["old_keyword"] = old
		p["new_keyword"] = repl
		p["case_sensitive"] = extract.CaseSensitive(prompt)

	case catalog.SpeechToText:
		p["language"] = catalog.LanguageAuto
		if l, ok := extract.FindLanguage(prompt); ok {
			p["language"] = l.Name
		}

	case catalog.TextToSpeech:
		if text, ok := extract.QuotedSpan(prompt); ok {
			p["text"] = text
		} else if text, ok := extract.AfterColon(prompt); ok {
			p["text"] = text
		}
		p["language"] = extract.Language(prompt)
	}
	return p
}
