package book

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DirVar is one name=value substitution variable for file directory
// expressions.
type DirVar struct {
	Name  string
	Value string
}

func (v DirVar) String() string {
	return v.Name + "=" + v.Value
}

// FormatDirVars renders dir vars for messages and exports.
func FormatDirVars(vars []DirVar) string {
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, ";")
}

// File is one physical file (EPUB, PDF etc.) attached to a book.
type File struct {
	BookTitleSort string
	Basename      string
	MetadataDir   string
	DirVars       []DirVar
	InputDir      string // the directory expression as written in metadata
	Hash          string // algorithm-tagged, e.g. "sha256:..."
	Path          string // resolved absolute path
}

// Less orders files by book title sort, then basename.
func (f File) Less(other File) bool {
	if f.BookTitleSort != other.BookTitleSort {
		return f.BookTitleSort < other.BookTitleSort
	}
	return f.Basename < other.Basename
}

// newFile resolves the directory expression: substitution variables are
// interpolated, then a still-relative directory is resolved against the
// book dir.
func newFile(titleSort, basename, metadataDir string, dirVars []DirVar, inputDir, hash string) (File, error) {
	interpolated, missing := interpolate(filepath.FromSlash(inputDir), dirVars)
	if len(missing) > 0 {
		provided := "<none provided>"
		if len(dirVars) > 0 {
			parts := make([]string, len(dirVars))
			for i, v := range dirVars {
				parts[i] = v.String()
			}
			provided = strings.Join(parts, ", ")
		}
		return File{}, fmt.Errorf(
			"undefined dir var(s) '%s', metadata file directory: '%s', file relative directory: '%s', dir vars: '%s'",
			strings.Join(missing, ", "), metadataDir, inputDir, provided)
	}

	path := filepath.Join(interpolated, basename)
	if !filepath.IsAbs(path) {
		path = filepath.Join(metadataDir, path)
	}

	return File{
		BookTitleSort: titleSort,
		Basename:      basename,
		MetadataDir:   metadataDir,
		DirVars:       dirVars,
		InputDir:      inputDir,
		Hash:          hash,
		Path:          path,
	}, nil
}

// interpolate replaces {name} references in expr with dir var values and
// returns the names of any unresolved references.
func interpolate(expr string, dirVars []DirVar) (string, []string) {
	values := make(map[string]string, len(dirVars))
	for _, v := range dirVars {
		values[v.Name] = v.Value
	}

	var out strings.Builder
	var missing []string
	seen := make(map[string]bool)
	for {
		open := strings.IndexByte(expr, '{')
		if open < 0 {
			out.WriteString(expr)
			break
		}
		closing := strings.IndexByte(expr[open:], '}')
		if closing < 0 {
			out.WriteString(expr)
			break
		}
		name := expr[open+1 : open+closing]
		out.WriteString(expr[:open])
		if value, ok := values[name]; ok {
			out.WriteString(value)
		} else if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		expr = expr[open+closing+1:]
	}
	return out.String(), missing
}

// decodeFiles expands a raw metadata value into Files sorted by basename.
// Accepted shapes: one {directory, hash, name} object or a list of them;
// directory is optional and defaults to the book dir itself. Duplicate
// basenames within one book are rejected.
func decodeFiles(raw json.RawMessage, titleSort, metadataDir string, dirVars []DirVar, metadataPath string) ([]File, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("no file entries found in '%s'", metadataPath)
	}

	elems, err := rawList(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid file data in '%s'", metadataPath)
	}

	type fileEntry struct {
		Directory *string `json:"directory"`
		Hash      *string `json:"hash"`
		Name      *string `json:"name"`
	}
	entries := make([]fileEntry, 0, len(elems))
	for _, elem := range elems {
		var entry fileEntry
		if err := json.Unmarshal(elem, &entry); err != nil || entry.Hash == nil || entry.Name == nil {
			return nil, fmt.Errorf("invalid file data in '%s'", metadataPath)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return *entries[i].Name < *entries[j].Name })

	var files []File
	seen := make(map[string]bool)
	for _, entry := range entries {
		basename := *entry.Name
		if seen[basename] {
			return nil, fmt.Errorf("duplicate file with name '%s' found in '%s'", basename, metadataPath)
		}
		seen[basename] = true

		inputDir := "."
		if entry.Directory != nil {
			inputDir = *entry.Directory
		}
		file, err := newFile(titleSort, basename, metadataDir, dirVars, inputDir, *entry.Hash)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
