// Package transform converts JSON object keys between the camelCase
// convention used in memory and the snake_case convention used on the wire
// by the hosted backend. Values are never touched; only map keys are
// renamed, recursively through nested objects and arrays.
package transform

import (
	"strings"
	"unicode"
)

// SnakeToCamel converts "display_name" to "displayName". Keys without
// underscores pass through unchanged.
func SnakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// CamelToSnake converts "displayName" to "display_name". Every upper-case
// rune opens its own word ("audioURL" -> "audio_u_r_l"), so SnakeToCamel
// restores any lower-case-leading key exactly.
func CamelToSnake(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelValue deep-converts the keys of any decoded JSON value to camelCase.
func ToCamelValue(v interface{}) interface{} {
	return mapKeys(v, SnakeToCamel)
}

// ToSnakeValue deep-converts the keys of any decoded JSON value to snake_case.
func ToSnakeValue(v interface{}) interface{} {
	return mapKeys(v, CamelToSnake)
}

func mapKeys(v interface{}, rename func(string) string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[rename(k)] = mapKeys(inner, rename)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = mapKeys(inner, rename)
		}
		return out
	default:
		return v
	}
}
