// Package propbag coerces the agent's loosely typed property bags into Go
// values. Each property carries a declared type that drives coercion;
// malformed input maps to an explicit safe default instead of failing the
// request.
package propbag

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Property is one named, typed property from an action-group invocation.
type Property struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Bag holds the coerced property values by name.
type Bag map[string]any

// coercer turns a raw string value into a typed value. The returned error
// signals that a fallback default was used; it is logged, never surfaced.
type coercer func(string) (any, error)

var coercers = map[string]coercer{
	"number":  coerceNumber,
	"object":  coerceObject,
	"array":   coerceArray,
	"boolean": coerceBoolean,
	"string":  coerceString,
}

// Extract coerces all properties according to their declared types.
// Unrecognized types pass through as strings.
func Extract(props []Property, log *zap.Logger) Bag {
	bag := make(Bag, len(props))
	for _, p := range props {
		fn, ok := coercers[strings.ToLower(p.Type)]
		if !ok {
			fn = coerceString
		}
		v, err := fn(p.Value)
		if err != nil && log != nil {
			log.Warn("property coercion fell back to default",
				zap.String("name", p.Name),
				zap.String("type", p.Type),
				zap.Error(err))
		}
		bag[p.Name] = v
	}
	return bag
}

func coerceString(v string) (any, error) {
	return v, nil
}

func coerceBoolean(v string) (any, error) {
	return strings.EqualFold(strings.TrimSpace(v), "true"), nil
}

// coerceNumber parses an exact decimal. Parse failure yields zero so a
// single malformed figure cannot fail the whole request.
func coerceNumber(v string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// coerceObject tries strict JSON first, then the loose "key=value" dialect
// the upstream caller occasionally emits, then an empty map.
func coerceObject(v string) (any, error) {
	m, err := parseJSON(strings.TrimSpace(v))
	if err == nil {
		if obj, ok := m.(map[string]any); ok {
			return obj, nil
		}
	}
	if obj, ok := parseLoose(v); ok {
		return obj, nil
	}
	return map[string]any{}, err
}

// coerceArray tries strict JSON; a non-JSON value becomes a single-element
// array rather than an error.
func coerceArray(v string) (any, error) {
	parsed, err := parseJSON(strings.TrimSpace(v))
	if err == nil {
		if arr, ok := parsed.([]any); ok {
			return arr, nil
		}
	}
	return []any{v}, err
}

// parseJSON decodes with json.Number so numeric values can be carried as
// exact decimals instead of binary floats.
func parseJSON(v string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(v)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return convertNumbers(out), nil
}

// convertNumbers rewrites json.Number leaves into decimal.Decimal.
func convertNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
		return decimal.Zero
	case map[string]any:
		for k, e := range t {
			t[k] = convertNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = convertNumbers(e)
		}
		return t
	default:
		return v
	}
}

// String returns the named value if it is a non-empty string.
func (b Bag) String(name string) string {
	s, _ := b[name].(string)
	return s
}

// Map returns the named value as an object, or an empty map.
func (b Bag) Map(name string) map[string]any {
	if m, ok := b[name].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// StringSlice flattens the named value into a list of strings, skipping
// non-string elements.
func (b Bag) StringSlice(name string) []string {
	return ToStringSlice(b[name])
}

// ToStringSlice converts a coerced array value to []string.
func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
