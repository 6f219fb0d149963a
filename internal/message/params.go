package message

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params maps parameter names to scalar values (string, number or bool).
//
// Values decoded from JSON arrive as float64; values built by the fallback
// resolver arrive as int. The accessors accept either.
type Params map[string]any

// IsScalar reports whether v is a value Params may hold.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64, float32:
		return true
	default:
		return false
	}
}

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value for key as a string, or def when absent.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the value for key as an int, or def when absent or not numeric.
func (p Params) Int(key string, def int) int {
	n, ok := p.int(key)
	if !ok {
		return def
	}
	return n
}

// IntOK is like Int but reports whether a usable value was present.
func (p Params) IntOK(key string) (int, bool) {
	return p.int(key)
}

func (p Params) int(key string) (int, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Round(t)), true
	case float32:
		return int(math.Round(float64(t))), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns the value for key as a bool, or def when absent or unparseable.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return def
	}
}
