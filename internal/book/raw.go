package book

import (
	"bytes"
	"encoding/json"
)

// isNull reports whether a raw metadata value is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// rawList normalizes a raw value to a list: a JSON array yields its
// elements, anything else yields a single-element list. Single-element
// lists and bare values are interchangeable in metadata records.
func rawList(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, err
		}
		return elems, nil
	}
	return []json.RawMessage{raw}, nil
}
