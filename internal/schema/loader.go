package schema

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
)

// reservedNames are field names that would collide with output artifacts.
var reservedNames = []string{fileio.DefaultCSVStem}

// Schema is an ordered, name-unique list of field declarations. It is
// parsed once per run and read-only afterwards.
type Schema struct {
	items []Item
}

// Items returns the declarations in declared order.
func (s *Schema) Items() []Item {
	return s.items
}

// TitleField returns the name of the title field. Validation guarantees
// one exists; a schema without one is a defect, not bad input.
func (s *Schema) TitleField() string {
	for _, item := range s.items {
		if _, ok := item.(Title); ok {
			return item.Name()
		}
	}
	panic("schema: no title field")
}

// FileField returns the name of the file field.
func (s *Schema) FileField() string {
	for _, item := range s.items {
		if _, ok := item.(File); ok {
			return item.Name()
		}
	}
	panic("schema: no file field")
}

// Equal reports whether two schemas have identical declarations in the
// same order.
func (s *Schema) Equal(other *Schema) bool {
	return reflect.DeepEqual(s.items, other.items)
}

func lower(s string) string { return strings.ToLower(s) }

// New parses and validates a schema from ordered declaration members.
func New(members []fileio.Member) (*Schema, error) {
	var items []Item
	for _, m := range members {
		name := lower(m.Key)
		for _, reserved := range reservedNames {
			if name == reserved {
				return nil, fmt.Errorf("reserved name '%s' found (reserved name(s) are: %s)",
					name, strings.Join(reservedNames, ", "))
			}
		}

		item, ok := decodeItem(name, m.Value)
		if !ok {
			return nil, fmt.Errorf("problem processing type for item name '%s'", name)
		}
		items = append(items, item)
	}

	for _, required := range []string{"title", "file"} {
		var found []string
		for _, item := range items {
			if typeName(item) == required {
				found = append(found, item.Name())
			}
		}
		switch {
		case len(found) == 0:
			return nil, fmt.Errorf("item with required type '%s' not found", required)
		case len(found) > 1:
			return nil, fmt.Errorf("duplicate items with type '%s' found, item names: %s",
				required, strings.Join(found, ", "))
		}
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.Name()] {
			return nil, fmt.Errorf("duplicate item name '%s' found", item.Name())
		}
		seen[item.Name()] = true
	}

	return &Schema{items: items}, nil
}

// ReadFile reads and validates the schema at path.
func ReadFile(path string) (*Schema, error) {
	members, err := fileio.ReadObject(path)
	if err != nil {
		return nil, err
	}
	s, err := New(members)
	if err != nil {
		return nil, fmt.Errorf("%w in '%s'", err, path)
	}
	return s, nil
}

// Discover locates the schema for a run: from an explicit path if given,
// otherwise from schema.json files in the library dirs, which must all
// parse to the same schema.
func Discover(path string, libraryDirs []string) (*Schema, []string, error) {
	if path != "" {
		s, err := ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return s, []string{path}, nil
	}

	var paths []string
	var schemas []*Schema
	for _, dir := range libraryDirs {
		p := fileio.SchemaPath(dir)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		s, err := ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, p)
		schemas = append(schemas, s)
	}

	if len(schemas) == 0 {
		return nil, nil, fmt.Errorf("schema filename not provided and no 'schema.json' found in library dirs")
	}
	for _, s := range schemas[1:] {
		if !s.Equal(schemas[0]) {
			return nil, nil, fmt.Errorf("schema filename not provided and at least two dir schemas conflict")
		}
	}

	sort.Strings(paths)
	return schemas[0], paths, nil
}
