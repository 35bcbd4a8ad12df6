package fileio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Member is one top-level key/value pair of a JSON object, in source order.
// The value is strict JSON, already standardized from any HuJSON extras.
type Member struct {
	Key   string
	Value json.RawMessage
}

// ReadObject reads path and decodes its top-level JSON object into ordered
// members. Comments and trailing commas are tolerated on input; duplicate
// keys are a reported error.
func ReadObject(path string) ([]Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read '%s': %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON in '%s': %w", path, err)
	}

	members, err := decodeObject(std)
	if err != nil {
		return nil, fmt.Errorf("%w in '%s'", err, path)
	}
	return members, nil
}

// decodeObject walks the top level of a JSON object token by token so that
// member order is preserved and duplicate keys can be detected, neither of
// which encoding/json offers on maps.
func decodeObject(data []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, found %v", tok)
	}

	var members []Member
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %v", err)
		}
		key := tok.(string)
		if seen[key] {
			return nil, fmt.Errorf("duplicate key '%s' found", key)
		}
		seen[key] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON value for key '%s': %v", key, err)
		}
		members = append(members, Member{Key: key, Value: raw})
	}
	return members, nil
}

// WriteJSON writes data as canonical JSON: object keys sorted, four-space
// indent, UTF-8 left unescaped, one trailing newline, using the requested
// newline convention.
func WriteJSON(path string, data any, newline Newline) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("cannot encode JSON for '%s': %w", path, err)
	}
	return WriteText(path, buf.String(), newline)
}
