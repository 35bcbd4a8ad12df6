package book

import (
	"regexp"
	"strings"

	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

// WriteOptions control how book files are regenerated.
type WriteOptions struct {
	Newline        fileio.Newline
	ReplaceUnicode bool
}

// WriteMetadata regenerates the book's metadata record and non-inline
// string text files into dir and returns the written paths. Output is
// canonical: sorted keys, fixed indentation, single-element lists
// collapsed to a bare value, absent fields as null.
func (b *Book) WriteMetadata(dir string, s *schema.Schema, opts WriteOptions) ([]string, error) {
	record := make(map[string]any)
	for _, item := range s.Items() {
		switch item := item.(type) {
		case schema.Date:
			if date := b.Fields.Dates[item.Name()]; date != nil {
				record[item.Name()] = date.Format(item.InputFormat)
			} else {
				record[item.Name()] = nil
			}

		case schema.File:
			entries := make([]any, len(b.Files))
			for i, f := range b.Files {
				entries[i] = map[string]any{
					"directory": f.InputDir,
					"hash":      f.Hash,
					"name":      f.Basename,
				}
			}
			record[item.Name()] = collapse(entries)

		case schema.KeyValue:
			kvs := b.Fields.KeyValues[item.Name()]
			if len(kvs) == 0 {
				record[item.Name()] = nil
				continue
			}
			m := make(map[string]string, len(kvs))
			for _, kv := range kvs {
				m[kv.Key] = kv.Value
			}
			record[item.Name()] = m

		case schema.SortDisplay:
			sds := b.Fields.SortDisplays[item.Name()]
			entries := make([]any, len(sds))
			for i, sd := range sds {
				entries[i] = sortDisplayValue(sd)
			}
			if len(entries) == 0 {
				record[item.Name()] = nil
			} else {
				record[item.Name()] = collapse(entries)
			}

		case schema.String:
			if item.Inline {
				if value := b.Fields.Strings[item.Name()]; value != nil {
					record[item.Name()] = *value
				} else {
					record[item.Name()] = nil
				}
			}

		case schema.Title:
			record[item.Name()] = sortDisplayValue(b.Title)
		}
	}

	metadataPath := fileio.MetadataPath(dir)
	if err := fileio.WriteJSON(metadataPath, record, opts.Newline); err != nil {
		return nil, err
	}
	written := []string{metadataPath}

	for _, item := range s.Items() {
		strItem, ok := item.(schema.String)
		if !ok || strItem.Inline {
			continue
		}
		value := b.Fields.Strings[strItem.Name()]
		if value == nil {
			continue
		}

		text := stripLineWhitespace(*value)
		if opts.ReplaceUnicode {
			text = replaceUnicode(text)
		}
		stringPath := fileio.StringPath(dir, strItem.Name())
		if err := fileio.WriteText(stringPath, b.TitlePrefix()+text, opts.Newline); err != nil {
			return nil, err
		}
		written = append(written, stringPath)
	}
	return written, nil
}

// collapse reduces a single-element list to its bare value.
func collapse(entries []any) any {
	if len(entries) == 1 {
		return entries[0]
	}
	return entries
}

// sortDisplayValue renders a SortDisplay in its degenerate form (a bare
// string) when sort and display coincide.
func sortDisplayValue(sd SortDisplay) any {
	if sd.Sort == sd.Display {
		return sd.Display
	}
	return map[string]string{"display": sd.Display, "sort": sd.Sort}
}

// stripLineWhitespace removes leading and trailing whitespace from every
// line.
func stripLineWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

var emDashBetweenWords = regexp.MustCompile(`(\w)—(\w)`)

var unicodeReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
	"•", "*",
	"–", "-", // en dash
	"—", "--", // em dash
)

// replaceUnicode rewrites typographic punctuation as ASCII equivalents.
func replaceUnicode(text string) string {
	text = emDashBetweenWords.ReplaceAllString(text, "$1 -- $2")
	return unicodeReplacer.Replace(text)
}
