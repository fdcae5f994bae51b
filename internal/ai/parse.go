
package ai

import (
	"encoding/json"
	"strings"
)

// ParseKind classifies what the model actually returned. Models routinely wrap
// JSON in markdown fences or reply with prose; callers decide per field what a
// malformed reply means.
type ParseKind int

const (
	ParseOK ParseKind = iota
	ParseMalformed
)

type ParseResult struct {
	Kind   ParseKind
	Fields map[string]any
	// Raw is the fence-stripped reply, kept for prose fallbacks.
	Raw string
}

// ParseModelJSON strips markdown fences and decodes a single JSON object.
func ParseModelJSON(reply string) ParseResult {
	raw := StripFences(reply)
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ParseResult{Kind: ParseMalformed, Raw: raw}
	}
	return ParseResult{Kind: ParseOK, Fields: fields, Raw: raw}
}

// StripFences removes a surrounding ```json ... ``` (or plain ```) block.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an optional language tag on the fence line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "json" || first == "" {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func fieldString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func fieldStrings(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
