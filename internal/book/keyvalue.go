package book

import (
	"encoding/json"
	"fmt"
	"sort"
)

// KeyValue is one entry of a keyvalue field.
type KeyValue struct {
	Key   string
	Value string
}

// decodeKeyValues expands a raw metadata value into KeyValue entries
// sorted by key. A null entry value is rejected, naming the offending key.
func decodeKeyValues(raw json.RawMessage, fieldname, metadataPath string) ([]KeyValue, error) {
	if isNull(raw) {
		return nil, nil
	}

	var m map[string]*string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("invalid '%s' data in '%s'", fieldname, metadataPath)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if v == nil {
			return nil, fmt.Errorf("key '%s' in keyvalue field '%s' in '%s' has a null value",
				k, fieldname, metadataPath)
		}
		kvs = append(kvs, KeyValue{Key: k, Value: *v})
	}
	return kvs, nil
}
