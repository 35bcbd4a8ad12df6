// Package fileio handles the on-disk formats shared by every command:
// canonical JSON, text files with a fixed newline convention, and the
// well-known filenames inside book and output directories.
package fileio

import "path/filepath"

// DefaultCSVStem is the stem of the main CSV output file. It is also a
// reserved schema field name: a field called "books" would collide with
// the primary sheet in split CSV output.
const DefaultCSVStem = "books"

// CSVPath returns the CSV filename for dir and stem.
func CSVPath(dir, stem string) string {
	return filepath.Join(dir, stem+".csv")
}

// DBPath returns the SQLite database filename for dir.
func DBPath(dir string) string {
	return filepath.Join(dir, "books.sqlite3")
}

// MetadataPath returns the metadata filename for a book dir.
func MetadataPath(dir string) string {
	return filepath.Join(dir, "metadata.json")
}

// SchemaPath returns the schema filename for dir.
func SchemaPath(dir string) string {
	return filepath.Join(dir, "schema.json")
}

// StringPath returns the text filename for a non-inline string field.
func StringPath(dir, fieldname string) string {
	return filepath.Join(dir, fieldname+".txt")
}
