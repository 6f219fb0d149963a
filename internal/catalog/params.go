package catalog

import (
	"fmt"
	"strings"

	"github.com/nadzzz/proagent/internal/message"
)

// Kind is a parameter value type.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "integer"
	KindBool   Kind = "boolean"
	KindChoice Kind = "choice"
)

// ParamSpec describes one accepted parameter.
type ParamSpec struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Hint string `json:"hint"`

	// Default is filled in by Normalize when the parameter is absent.
	// Nil means the parameter stays absent.
	Default any `json:"default,omitempty"`

	// Min and Max bound KindInt values when Max > Min.
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`

	// Choices are the accepted KindChoice values, compared case-insensitively.
	Choices []string `json:"choices,omitempty"`
}

// TypeHint renders the kind for the reasoning prompt.
func (p ParamSpec) TypeHint() string {
	switch {
	case p.Kind == KindChoice:
		return "one of " + strings.Join(p.Choices, ", ")
	case p.Kind == KindInt && p.Max > p.Min:
		return fmt.Sprintf("integer %d-%d", p.Min, p.Max)
	default:
		return string(p.Kind)
	}
}

// Clamp forces n into the parameter's range when one is declared.
func (p ParamSpec) Clamp(n int) int {
	if p.Max <= p.Min {
		return n
	}
	return max(p.Min, min(p.Max, n))
}

// Choice returns the canonical spelling of v if it is an accepted choice.
func (p ParamSpec) Choice(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, c := range p.Choices {
		if strings.EqualFold(c, v) {
			return c, true
		}
	}
	return "", false
}

// Param returns the schema for name.
func (e Entry) Param(name string) (ParamSpec, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Normalize coerces params to e's schema: integers are clamped into range,
// invalid choices are replaced by the default, booleans are parsed, and
// defaults are filled for absent parameters. Unknown keys are kept as-is.
// The input is not modified.
func (e Entry) Normalize(params message.Params) message.Params {
	out := params.Clone()
	for _, p := range e.Params {
		if !out.Has(p.Name) {
			if p.Default != nil {
				out[p.Name] = p.Default
			} else {
				delete(out, p.Name)
			}
			continue
		}

		switch p.Kind {
		case KindInt:
			n, ok := out.IntOK(p.Name)
			if !ok {
				setOrDrop(out, p.Name, p.Default)
				continue
			}
			out[p.Name] = p.Clamp(n)
		case KindBool:
			def, _ := p.Default.(bool)
			out[p.Name] = out.Bool(p.Name, def)
		case KindChoice:
			c, ok := p.Choice(out.String(p.Name, ""))
			if !ok {
				setOrDrop(out, p.Name, p.Default)
				continue
			}
			out[p.Name] = c
		case KindString:
			s := out.String(p.Name, "")
			if strings.TrimSpace(s) == "" {
				setOrDrop(out, p.Name, p.Default)
				continue
			}
			out[p.Name] = s
		}
	}
	return out
}

func setOrDrop(params message.Params, key string, def any) {
	if def == nil {
		delete(params, key)
		return
	}
	params[key] = def
}
