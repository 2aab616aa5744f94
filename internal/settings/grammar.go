// Package settings parses the key:value micro-grammar used by SETTINGS rows
// and note cells, e.g. `accounttype: asset, asOfDate: 2021-12-31` or a
// braced Hjson object.
package settings

import (
	"errors"
	"fmt"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/shopspring/decimal"
)

// ErrNotSettings is returned when text contains no key:value pairs.
var ErrNotSettings = errors.New("not a settings expression")

// Parse converts a cell into a map of settings. Keys without a value
// (`mktonly`) are set to true.
func Parse(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrNotSettings
	}
	if strings.HasPrefix(s, "{") {
		var obj map[string]any
		if err := hjson.Unmarshal([]byte(s), &obj); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		return normalizeMap(obj), nil
	}

	out := make(map[string]any)
	for _, part := range splitTopLevel(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, " \t\"'") {
			return nil, fmt.Errorf("parsing %q: %w", s, ErrNotSettings)
		}
		if !found {
			out[key] = true
			continue
		}
		v, err := parseValue(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil, ErrNotSettings
	}
	return out, nil
}

func parseValue(v string) (any, error) {
	switch {
	case v == "":
		return "", nil
	case strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{"):
		var out any
		if err := hjson.Unmarshal([]byte(v), &out); err != nil {
			return nil, err
		}
		return normalize(out), nil
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	}
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1], nil
	}
	if d, err := decimal.NewFromString(v); err == nil {
		return d, nil
	}
	return v, nil
}

// splitTopLevel splits on commas and newlines outside quotes and brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote rune
	start := 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			if depth > 0 {
				depth--
			}
		case (r == ',' || r == '\n' || r == ';') && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// normalize converts Hjson's float64 numbers to decimals, recursively.
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x)
	case map[string]any:
		return normalizeMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// Merge copies every entry of src into dst, later values winning.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

// String returns a settings value as text.
func String(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case decimal.Decimal:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Strings returns a settings value as a list. A scalar becomes a one-element
// list; a string containing "|" is split on it.
func Strings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, p := range strings.Split(x, "|") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
