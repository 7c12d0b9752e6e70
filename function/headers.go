package function

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Headers holds HTTP headers. On the wire every value is either a string or
// an array of strings; multiple values are written joined with ", ".
type Headers map[string][]string

// Get returns all values stored under name, joined with ", ". The lookup
// ignores case.
func (h Headers) Get(name string) (string, bool) {
	if v, ok := h[name]; ok {
		return strings.Join(v, ", "), true
	}
	// deterministic pick when several spellings are present
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return strings.Join(h[k], ", "), true
		}
	}
	return "", false
}

// Add appends value to the values stored under name.
func (h Headers) Add(name, value string) {
	h[name] = append(h[name], value)
}

// Set replaces the values stored under name.
func (h Headers) Set(name string, values ...string) {
	h[name] = values
}

func (h Headers) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(h))
	for k, v := range h {
		flat[k] = strings.Join(v, ", ")
	}
	return json.Marshal(flat)
}

func (h *Headers) UnmarshalJSON(b []byte) error {
	m, err := decodeMultiMap(b)
	if err != nil {
		return fmt.Errorf("headers: %w", err)
	}
	*h = m
	return nil
}

// Params holds the query or form parameters of an HTTP trigger, decoded the
// same way as Headers.
type Params map[string][]string

// Get returns the first value stored under name.
func (p Params) Get(name string) string {
	if v := p[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (p *Params) UnmarshalJSON(b []byte) error {
	m, err := decodeMultiMap(b)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	*p = m
	return nil
}

// decodeMultiMap decodes an object whose values are strings or arrays of
// strings. A JSON null decodes to a nil map.
func decodeMultiMap(b []byte) (map[string][]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	out := make(map[string][]string, len(raw))
	for k, v := range raw {
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			out[k] = []string{single}
			continue
		}

		var many []string
		if err := json.Unmarshal(v, &many); err != nil {
			return nil, fmt.Errorf("value of %q is neither a string nor an array of strings", k)
		}
		out[k] = many
	}
	return out, nil
}
