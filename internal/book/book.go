package book

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

// Fields holds a book's typed field values, keyed by field name. Which
// maps a given name lives in is determined by the schema's kind for that
// field.
type Fields struct {
	Dates        map[string]*Date
	KeyValues    map[string][]KeyValue
	SortDisplays map[string][]SortDisplay
	Strings      map[string]*string
}

// Book is one catalogued item, loaded from a book dir.
type Book struct {
	Title       SortDisplay
	MetadataDir string
	Fields      Fields
	Files       []File
}

// Less orders books by title.
func (b *Book) Less(other *Book) bool {
	return b.Title.Less(other.Title)
}

// TitlePrefix is the banner written at the top of non-inline string text
// files, reproducing the book's display title.
func (b *Book) TitlePrefix() string {
	return titlePrefix(b.Title.Display)
}

func titlePrefix(display string) string {
	return fmt.Sprintf("# Title: %s\n#\n", display)
}

// Load reads the metadata record in dir and produces a Book according to
// the schema. It is a pure read: structural problems in the record are
// reported errors and nothing is written.
func Load(dir string, dirVars []DirVar, s *schema.Schema) (*Book, error) {
	metadataDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve book dir '%s': %w", dir, err)
	}
	metadataPath := fileio.MetadataPath(metadataDir)

	members, err := fileio.ReadObject(metadataPath)
	if err != nil {
		return nil, err
	}
	metadata := make(map[string]json.RawMessage, len(members))
	for _, m := range members {
		metadata[m.Key] = m.Value
	}

	titleField := s.TitleField()
	titles, err := decodeSortDisplays(metadata[titleField], titleField, metadataPath)
	if err != nil {
		return nil, err
	}
	if len(titles) != 1 {
		return nil, fmt.Errorf("expected exactly one '%s' value in '%s', found %d",
			titleField, metadataPath, len(titles))
	}
	title := titles[0]

	fields := Fields{
		Dates:        make(map[string]*Date),
		KeyValues:    make(map[string][]KeyValue),
		SortDisplays: make(map[string][]SortDisplay),
		Strings:      make(map[string]*string),
	}
	var files []File

	for _, item := range s.Items() {
		raw := metadata[item.Name()]
		switch item := item.(type) {
		case schema.Date:
			date, err := decodeDate(raw, item, metadataPath)
			if err != nil {
				return nil, err
			}
			fields.Dates[item.Name()] = date

		case schema.File:
			files, err = decodeFiles(raw, title.Sort, metadataDir, dirVars, metadataPath)
			if err != nil {
				return nil, err
			}

		case schema.KeyValue:
			kvs, err := decodeKeyValues(raw, item.Name(), metadataPath)
			if err != nil {
				return nil, err
			}
			fields.KeyValues[item.Name()] = kvs

		case schema.SortDisplay:
			sds, err := decodeSortDisplays(raw, item.Name(), metadataPath)
			if err != nil {
				return nil, err
			}
			fields.SortDisplays[item.Name()] = sds

		case schema.String:
			value, err := loadString(metadata, item, metadataDir, title.Display)
			if err != nil {
				return nil, err
			}
			fields.Strings[item.Name()] = value

		case schema.Title:
			// already decoded above
		}
	}

	return &Book{
		Title:       title,
		MetadataDir: metadataDir,
		Fields:      fields,
		Files:       files,
	}, nil
}

func decodeDate(raw json.RawMessage, item schema.Date, metadataPath string) (*Date, error) {
	if isNull(raw) {
		return nil, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("invalid '%s' data in '%s'", item.Name(), metadataPath)
	}
	date, err := ParseDate(value, item.InputFormat)
	if err != nil {
		return nil, fmt.Errorf("%w for field '%s' in '%s'", err, item.Name(), metadataPath)
	}
	return &date, nil
}

// loadString reads a string field: inline values come from the metadata
// record, non-inline values from a sibling <field>.txt file with the title
// banner stripped. A non-inline field supplied inline is a reported error.
func loadString(metadata map[string]json.RawMessage, item schema.String, metadataDir, titleDisplay string) (*string, error) {
	raw := metadata[item.Name()]
	if item.Inline {
		if isNull(raw) {
			return nil, nil
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid '%s' data in '%s'",
				item.Name(), fileio.MetadataPath(metadataDir))
		}
		return &value, nil
	}

	if _, present := metadata[item.Name()]; present {
		return nil, fmt.Errorf("'%s' data found in '%s' but field is inline: false in the schema",
			item.Name(), fileio.MetadataPath(metadataDir))
	}

	stringPath := fileio.StringPath(metadataDir, item.Name())
	if _, err := os.Stat(stringPath); err != nil {
		return nil, nil
	}
	text, err := fileio.ReadText(stringPath)
	if err != nil {
		return nil, err
	}
	text = strings.TrimPrefix(text, titlePrefix(titleDisplay))
	return &text, nil
}
