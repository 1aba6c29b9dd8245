package propbag

import "strings"

// parseLoose parses the non-JSON dialect the upstream caller sometimes
// emits for object properties: "key=value, key2=[a, b], key3=c". Bracketed
// values become string arrays; everything else is a string. Returns false
// when the input does not look like the dialect at all, so the caller can
// fall through to its empty-container default.
func parseLoose(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		return nil, false
	}

	out := make(map[string]any)
	for _, seg := range splitTop(s, ',') {
		key, val, found := strings.Cut(seg, "=")
		if !found {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'`)
		if key == "" {
			continue
		}
		out[key] = looseValue(strings.TrimSpace(val))
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// looseValue interprets one right-hand side of the dialect.
func looseValue(v string) any {
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		inner := strings.TrimSpace(v[1 : len(v)-1])
		if inner == "" {
			return []any{}
		}
		parts := splitTop(inner, ',')
		arr := make([]any, 0, len(parts))
		for _, p := range parts {
			arr = append(arr, strings.Trim(strings.TrimSpace(p), `"'`))
		}
		return arr
	}
	return strings.Trim(v, `"'`)
}

// splitTop splits on sep at bracket depth zero, honoring quotes.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
