// Package schema handles schema loading and validation.
//
// A schema is an ordered list of named field declarations read from
// schema.json. The set of field kinds is closed: consumers dispatch with
// exhaustive type switches, so adding a kind is a compile-visible change
// everywhere it must be handled.
package schema

import "encoding/json"

// Item is one field declaration. Implementations are the six field kinds;
// no other implementations exist.
type Item interface {
	// Name returns the lowercased field name.
	Name() string
	isItem()
}

// Date is a single optional date, parsed and formatted with explicit
// reference-time layouts.
type Date struct {
	FieldName    string
	InputFormat  string
	OutputFormat string
}

// File is the set of physical files attached to a book. Exactly one per
// schema.
type File struct {
	FieldName string
}

// KeyValue is a string-to-string map with configurable column labels.
type KeyValue struct {
	FieldName  string
	KeyLabel   string
	ValueLabel string
}

// SortDisplay is an ordered set of cross-referenceable values shared
// between books, such as authors.
type SortDisplay struct {
	FieldName string
}

// String is free text, stored inline in metadata.json or in a sibling
// <field>.txt file.
type String struct {
	FieldName string
	Inline    bool
}

// Title is the book title, unique across the collection. Exactly one per
// schema.
type Title struct {
	FieldName string
}

func (d Date) Name() string        { return d.FieldName }
func (f File) Name() string        { return f.FieldName }
func (k KeyValue) Name() string    { return k.FieldName }
func (s SortDisplay) Name() string { return s.FieldName }
func (s String) Name() string      { return s.FieldName }
func (t Title) Name() string       { return t.FieldName }

func (Date) isItem()        {}
func (File) isItem()        {}
func (KeyValue) isItem()    {}
func (SortDisplay) isItem() {}
func (String) isItem()      {}
func (Title) isItem()       {}

// typeName returns the kind name used in schema.json for an item.
func typeName(item Item) string {
	switch item.(type) {
	case Date:
		return "date"
	case File:
		return "file"
	case KeyValue:
		return "keyvalue"
	case SortDisplay:
		return "sortdisplay"
	case String:
		return "string"
	case Title:
		return "title"
	}
	panic("schema: unknown item type")
}

// dateParams and friends are the kind-specific parameter shapes accepted in
// schema.json when a declaration is an object rather than a bare kind name.
type dateParams struct {
	Type         string `json:"type"`
	InputFormat  string `json:"input_format"`
	OutputFormat string `json:"output_format"`
}

type keyValueParams struct {
	Type       string `json:"type"`
	KeyLabel   string `json:"key_label"`
	ValueLabel string `json:"value_label"`
}

type stringParams struct {
	Type   string `json:"type"`
	Inline *bool  `json:"inline"`
}

type bareParams struct {
	Type string `json:"type"`
}

// decodeItem builds an Item from a raw schema.json declaration: either a
// bare kind name or an object with a "type" key plus kind parameters.
func decodeItem(name string, raw json.RawMessage) (Item, bool) {
	var kind string
	if err := json.Unmarshal(raw, &kind); err != nil {
		var bare bareParams
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil, false
		}
		kind = bare.Type
	}

	switch lower(kind) {
	case "date":
		var p dateParams
		if err := json.Unmarshal(raw, &p); err != nil || p.InputFormat == "" || p.OutputFormat == "" {
			return nil, false
		}
		return Date{FieldName: name, InputFormat: p.InputFormat, OutputFormat: p.OutputFormat}, true
	case "file":
		return File{FieldName: name}, true
	case "keyvalue":
		var p keyValueParams
		if err := json.Unmarshal(raw, &p); err != nil || p.KeyLabel == "" || p.ValueLabel == "" {
			return nil, false
		}
		return KeyValue{FieldName: name, KeyLabel: p.KeyLabel, ValueLabel: p.ValueLabel}, true
	case "sortdisplay":
		return SortDisplay{FieldName: name}, true
	case "string":
		var p stringParams
		if err := json.Unmarshal(raw, &p); err != nil || p.Inline == nil {
			return nil, false
		}
		return String{FieldName: name, Inline: *p.Inline}, true
	case "title":
		return Title{FieldName: name}, true
	}
	return nil, false
}
