package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
)

// Parse failures, also used as the failure reason label.
var (
	ErrDecode          = errors.New("decode")
	ErrUnknownFunction = errors.New("unknown_function")
	ErrConfidence      = errors.New("confidence")
	ErrParameters      = errors.New("parameters")
)

// maxFenceLayers bounds how many nested code fences are peeled.
const maxFenceLayers = 3

type reply struct {
	FunctionName *string                    `json:"function_name"`
	Parameters   map[string]json.RawMessage `json:"parameters"`
	Confidence   json.RawMessage            `json:"confidence"`
}

// parseReply validates a reasoning-service reply against c. On failure the
// returned name is the proposed function name, if one was decoded.
func parseReply(c *catalog.Catalog, text string) (message.Call, string, error) {
	body := extractJSON(text)

	var r reply
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return message.Call{}, "", fmt.Errorf("%w: %v (reply: %.200s)", ErrDecode, err, text)
	}

	if r.FunctionName == nil || *r.FunctionName == "" {
		return message.Call{}, "", fmt.Errorf("%w: function_name missing", ErrUnknownFunction)
	}
	name := strings.TrimSpace(*r.FunctionName)
	entry, ok := c.Lookup(name)
	if !ok {
		return message.Call{}, name, fmt.Errorf("%w: %q is not in the catalog", ErrUnknownFunction, name)
	}

	confidence, err := parseConfidence(r.Confidence)
	if err != nil {
		return message.Call{}, name, err
	}

	params := make(message.Params, len(r.Parameters))
	for k, raw := range r.Parameters {
		v, err := scalar(raw)
		if err != nil {
			return message.Call{}, name, fmt.Errorf("%w: %s: %v", ErrParameters, k, err)
		}
		if v != nil {
			params[k] = v
		}
	}

	return message.Call{
		FunctionName: entry.ID,
		Parameters:   entry.Normalize(params),
		Confidence:   confidence,
		Strategy:     message.StrategyReasoning,
	}, name, nil
}

func parseConfidence(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: missing", ErrConfidence)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: not a number: %s", ErrConfidence, raw)
	}
	// json.Number also accepts numeric strings; only bare numbers count.
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		return 0, fmt.Errorf("%w: not a number: %s", ErrConfidence, raw)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: %s outside [0,1]", ErrConfidence, raw)
	}
	return f, nil
}

// scalar decodes a parameter value, rejecting objects and arrays.
// JSON null decodes to nil and is dropped by the caller.
func scalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case nil, string, bool:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("non-scalar value %s", raw)
	}
}

// extractJSON peels up to three layers of code fences and, if the result
// still is not a JSON object, falls back to the span between the first "{"
// and the last "}".
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	for range maxFenceLayers {
		inner, ok := stripFence(s)
		if !ok {
			break
		}
		s = inner
	}
	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// stripFence removes one enclosing ``` fence (with optional language tag).
func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s, false
	}
	inner := s[3 : len(s)-3]
	// Drop an info string such as "json" on the opening line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(inner[:nl]); tag == "" || !strings.ContainsAny(tag, "{[\"") {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimPrefix(inner, "json")
	}
	return strings.TrimSpace(inner), true
}
