// Package fields holds the typed key-value container for extractor output,
// the tolerant date parser, and per-type field validation.
package fields

import (
	"fmt"
	"strings"
)

// ErrorKey marks a failed extraction inside a field map. Consolidation
// simply finds no usable name or date under it.
const ErrorKey = "error"

// Map is the flat field dictionary returned by the field-extraction
// collaborator. Keys the core does not interpret are preserved as
// passthrough data. A missing key stands for null.
type Map map[string]string

// Get returns the trimmed value for key, or "" when absent.
func (m Map) Get(key string) string {
	return strings.TrimSpace(m[key])
}

// First returns the first non-empty value among keys.
func (m Map) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := m.Get(k); v != "" {
			return v, true
		}
	}
	return "", false
}

// Failed reports whether the map is an extraction-error marker.
func (m Map) Failed() bool {
	return m.Get(ErrorKey) != ""
}

// FailureMap builds the error marker for a failed extraction call.
func FailureMap(err error) Map {
	return Map{ErrorKey: fmt.Sprintf("extraction failed: %v", err)}
}

// FromAny converts a decoded JSON object into a Map. Scalars are
// stringified, nulls and empty strings are dropped, and nested values are
// skipped (the collaborator contract is a flat mapping).
func FromAny(obj map[string]any) Map {
	m := make(Map, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				continue
			}
			m[k] = s
		case bool:
			m[k] = fmt.Sprintf("%t", t)
		case float64:
			m[k] = trimFloat(t)
		default:
			// objects/arrays: not part of the flat contract
			continue
		}
	}
	return m
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
