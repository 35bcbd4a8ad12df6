// Package book loads and writes a single book: its typed field values and
// the physical files attached to it.
package book

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SortDisplay is a cross-referenceable value shared between books, such as
// an author. The sort string drives uniqueness and ordering; the display
// string is the user-facing text. The key is assigned during normalization
// and is undefined before that.
type SortDisplay struct {
	Sort    string
	Display string

	key    string
	hasKey bool
}

// NewSortDisplay returns an unkeyed SortDisplay.
func NewSortDisplay(sort, display string) SortDisplay {
	return SortDisplay{Sort: sort, Display: display}
}

// Key returns the assigned key. Requesting a key before assignment is a
// defect: validation and key assignment always run before any consumer.
func (sd SortDisplay) Key() string {
	if !sd.hasKey {
		panic(fmt.Sprintf("book: key for 'sort=%s' is unassigned", sd.Sort))
	}
	return sd.key
}

// HasKey reports whether a key has been assigned.
func (sd SortDisplay) HasKey() bool { return sd.hasKey }

// WithKey returns a copy with the key assigned.
func (sd SortDisplay) WithKey(key string) SortDisplay {
	sd.key = key
	sd.hasKey = true
	return sd
}

// Pair returns the (sort, display) value used as the canonical lookup key
// during normalization.
func (sd SortDisplay) Pair() Pair {
	return Pair{Sort: sd.Sort, Display: sd.Display}
}

// Less orders by sort, then display.
func (sd SortDisplay) Less(other SortDisplay) bool {
	if sd.Sort != other.Sort {
		return sd.Sort < other.Sort
	}
	return sd.Display < other.Display
}

// Equal reports whether sort, display and key state all match. It is also
// picked up by go-cmp in tests.
func (sd SortDisplay) Equal(other SortDisplay) bool {
	return sd == other
}

// Pair is a comparable (sort, display) pair, suitable as a map key.
type Pair struct {
	Sort    string
	Display string
}

// decodeSortDisplays expands a raw metadata value into SortDisplays. The
// accepted shapes are a bare string (sort == display), a {sort, display}
// object, or a list of either; null means empty. Duplicate sorts or
// displays within the one field are rejected. Results are sorted.
func decodeSortDisplays(raw json.RawMessage, fieldname, metadataPath string) ([]SortDisplay, error) {
	if isNull(raw) {
		return nil, nil
	}

	elems, err := rawList(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s' data in '%s'", fieldname, metadataPath)
	}

	var sds []SortDisplay
	sorts := make(map[string]bool)
	displays := make(map[string]bool)
	for _, elem := range elems {
		sd, err := decodeOneSortDisplay(elem)
		if err != nil {
			return nil, fmt.Errorf("invalid '%s' data in '%s'", fieldname, metadataPath)
		}

		if sorts[sd.Sort] {
			return nil, fmt.Errorf("duplicate '%s' data 'sort=%s' found in '%s'",
				fieldname, sd.Sort, metadataPath)
		}
		sorts[sd.Sort] = true

		if displays[sd.Display] {
			return nil, fmt.Errorf("duplicate '%s' data 'display=%s' found in '%s'",
				fieldname, sd.Display, metadataPath)
		}
		displays[sd.Display] = true

		sds = append(sds, sd)
	}

	sort.Slice(sds, func(i, j int) bool { return sds[i].Less(sds[j]) })
	return sds, nil
}

func decodeOneSortDisplay(raw json.RawMessage) (SortDisplay, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return NewSortDisplay(s, s), nil
	}

	var pair struct {
		Sort    *string `json:"sort"`
		Display *string `json:"display"`
	}
	if err := json.Unmarshal(raw, &pair); err != nil || pair.Sort == nil || pair.Display == nil {
		return SortDisplay{}, fmt.Errorf("expected a string or {sort, display} object")
	}
	return NewSortDisplay(*pair.Sort, *pair.Display), nil
}
