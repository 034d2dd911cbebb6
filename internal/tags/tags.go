// Package tags canonicalizes heterogeneous tag input into a deduplicated
// string-keyed set. The persisted form is a map with key == value so the
// record store can index individual tags at the field level.
package tags

import (
	"encoding/json"
	"sort"
	"strings"
)

// Input is the tagged union of recognized tag input shapes. Each variant
// flattens itself to a raw string sequence; Normalize applies the common
// canonicalization step.
type Input interface {
	flatten() []string
}

// String is a comma-delimited tag list, e.g. "go, backend,go".
type String string

func (s String) flatten() []string {
	return strings.Split(string(s), ",")
}

// List is an ordered sequence of tag strings.
type List []string

func (l List) flatten() []string {
	return l
}

// Map is a pre-structured key/value form; only the value set is used.
type Map map[string]string

func (m Map) flatten() []string {
	vals := make([]string, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	// Map iteration order is random; sort so output is deterministic.
	sort.Strings(vals)
	return vals
}

// Normalize flattens in, trims whitespace, drops empty strings, and folds the
// result into a set keyed by the tag itself. A nil input yields a nil map.
func Normalize(in Input) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string)
	for _, raw := range in.flatten() {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		out[tag] = tag
	}
	return out
}

// FromJSON interprets a raw JSON value as tag input: an array of strings, an
// object (value set), a string, or any other scalar. A JSON string whose
// content itself parses as a JSON array is interpreted as that array rather
// than as a literal delimited string.
func FromJSON(raw json.RawMessage) Input {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return List(list)
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		return Map(m)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if inner := parseEncodedList(s); inner != nil {
			return List(inner)
		}
		return String(s)
	}

	// Remaining scalars (numbers, booleans) become a single literal tag.
	return String(strings.Trim(string(raw), `"`))
}

// parseEncodedList detects a string payload that carries an encoded list,
// e.g. `"[\"a\",\"b\"]"`. Returns nil when the string is a plain literal.
func parseEncodedList(s string) []string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil
	}
	return list
}
