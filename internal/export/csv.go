// Package export projects the normalized collection into spreadsheet
// sheets: a single flat sheet, or a split set where book rows reference
// shared values through lookup formulas instead of inlined text.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/jeremyn/simple-ebook-manager/internal/book"
	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

// Delim joins multi-valued data inside a single cell.
const Delim = ";"

// Sheet is one CSV file: a stem (also the worksheet name referenced by
// formulas), a header row and data rows.
type Sheet struct {
	Stem    string
	Columns []string
	Rows    [][]string
}

// SheetStem returns the deterministic, case-normalized worksheet name for
// a field.
func SheetStem(fieldname string) string {
	return slug.Make(fieldname)
}

// BuildFlat builds the single-sheet export: one row per book, multi-valued
// fields joined into delimited cells.
func BuildFlat(lib *library.Library, s *schema.Schema) Sheet {
	columns := bookColumns(s, false)
	rows := bookRows(lib, s, false)
	return Sheet{Stem: fileio.DefaultCSVStem, Columns: columns, Rows: rows}
}

// BuildSplit builds the multi-sheet export: the books sheet plus one sheet
// per sortdisplay field and one for files, cross-referenced by formulas so
// a shared value edited once updates every referencing row.
func BuildSplit(lib *library.Library, s *schema.Schema) []Sheet {
	sheets := []Sheet{{
		Stem:    fileio.DefaultCSVStem,
		Columns: bookColumns(s, true),
		Rows:    bookRows(lib, s, true),
	}}

	for _, item := range s.Items() {
		switch item := item.(type) {
		case schema.File:
			sheets = append(sheets, fileSheet(lib, s, item))
		case schema.SortDisplay:
			sheets = append(sheets, sortDisplaySheet(lib, item))
		}
	}
	return sheets
}

// fileKey is the lookup key for one file row: the owning book's key plus
// the basename.
func fileKey(bookTitleKey, basename string) string {
	return bookTitleKey + "|" + basename
}

// columnLetter returns the spreadsheet letter for a 1-based column index.
// Sheets here never exceed 26 columns.
func columnLetter(n int) string {
	return string(rune('A' + n - 1))
}

// vlookup builds a VLOOKUP/MATCH formula resolving colname for key on
// sheetname. Row and column extents must be known up front: the range is
// fixed at generation time, so the formula stays valid under row
// reordering but not under layout changes.
func vlookup(sheetname, key string, numRows, numCols int, colname string) string {
	if _, err := strconv.Atoi(key); err != nil {
		key = `"` + key + `"`
	}
	end := columnLetter(numCols)
	tableRange := fmt.Sprintf("%s!A2:%s!%s%d", sheetname, sheetname, end, numRows+1)
	match := fmt.Sprintf(`MATCH("%s",%s!A1:%s!%s1,0)`, colname, sheetname, sheetname, end)
	return fmt.Sprintf("VLOOKUP(%s,%s,%s,FALSE)", key, tableRange, match)
}

// concatLookups builds the cell formula for a multi-valued sortdisplay
// column: one lookup per value, concatenated with the delimiter.
func concatLookups(sheetname string, sds []book.SortDisplay, numRows int, colname string) string {
	if len(sds) == 0 {
		return ""
	}

	lookups := make([]string, len(sds))
	for i, sd := range sds {
		lookups[i] = vlookup(sheetname, sd.Key(), numRows, len(sortDisplayColumns("")), colname)
	}
	if len(lookups) == 1 {
		return "=" + lookups[0]
	}
	return "=CONCATENATE(" + strings.Join(lookups, fmt.Sprintf(`, "%s", `, Delim)) + ")"
}

// filesFormula builds the books-sheet cell referencing a book's file rows.
func filesFormula(files []book.File, bookTitleKey, sheetname string, numAllFiles, numFileCols int) string {
	parts := make([]string, len(files))
	for i, f := range files {
		lookup := vlookup(sheetname, fileKey(bookTitleKey, f.Basename), numAllFiles, numFileCols, "file_hash")
		parts[i] = fmt.Sprintf(`"%s::", %s`, f.Basename, lookup)
	}
	return "=CONCATENATE(" + strings.Join(parts, fmt.Sprintf(`, "%s", `, Delim)) + ")"
}

func bookColumns(s *schema.Schema, split bool) []string {
	var columns []string
	if split {
		columns = append(columns, "key")
	}
	columns = append(columns, "metadata_directory")
	for _, item := range s.Items() {
		switch item.(type) {
		case schema.SortDisplay, schema.Title:
			columns = append(columns, item.Name()+"_sort", item.Name()+"_display")
		default:
			columns = append(columns, item.Name())
		}
	}
	return columns
}

func bookRows(lib *library.Library, s *schema.Schema, split bool) [][]string {
	numFileCols := len(fileColumns(s))
	var rows [][]string
	for _, b := range lib.Books {
		var row []string
		if split {
			row = append(row, b.Title.Key())
		}
		row = append(row, b.MetadataDir)

		for _, item := range s.Items() {
			switch item := item.(type) {
			case schema.Date:
				if date := b.Fields.Dates[item.Name()]; date != nil {
					row = append(row, date.Format(item.OutputFormat))
				} else {
					row = append(row, "")
				}

			case schema.File:
				if split {
					row = append(row, filesFormula(
						b.Files, b.Title.Key(), SheetStem(item.Name()), len(lib.Files), numFileCols))
				} else {
					parts := make([]string, len(b.Files))
					for i, f := range b.Files {
						parts[i] = f.Basename + "::" + f.Hash
					}
					row = append(row, strings.Join(parts, Delim))
				}

			case schema.KeyValue:
				kvs := b.Fields.KeyValues[item.Name()]
				parts := make([]string, len(kvs))
				for i, kv := range kvs {
					parts[i] = kv.Key + ":" + kv.Value
				}
				row = append(row, strings.Join(parts, Delim))

			case schema.SortDisplay:
				sds := b.Fields.SortDisplays[item.Name()]
				if split {
					numRows := len(lib.Fields[item.Name()])
					sheet := SheetStem(item.Name())
					row = append(row,
						concatLookups(sheet, sds, numRows, item.Name()+"_sort"),
						concatLookups(sheet, sds, numRows, item.Name()+"_display"))
				} else {
					sorts := make([]string, len(sds))
					displays := make([]string, len(sds))
					for i, sd := range sds {
						sorts[i] = sd.Sort
						displays[i] = sd.Display
					}
					row = append(row, strings.Join(sorts, Delim), strings.Join(displays, Delim))
				}

			case schema.String:
				if value := b.Fields.Strings[item.Name()]; value != nil {
					row = append(row, *value)
				} else {
					row = append(row, "")
				}

			case schema.Title:
				row = append(row, b.Title.Sort, b.Title.Display)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sortDisplayColumns(fieldname string) []string {
	return []string{"key", fieldname + "_sort", fieldname + "_display"}
}

func sortDisplaySheet(lib *library.Library, item schema.SortDisplay) Sheet {
	var rows [][]string
	for _, sd := range lib.Fields[item.Name()] {
		rows = append(rows, []string{sd.Key(), sd.Sort, sd.Display})
	}
	return Sheet{
		Stem:    SheetStem(item.Name()),
		Columns: sortDisplayColumns(item.Name()),
		Rows:    rows,
	}
}

func fileColumns(s *schema.Schema) []string {
	title := s.TitleField()
	return []string{
		"key",
		title + "_sort",
		title + "_display",
		"file_name",
		"file_hash",
		"file_full_path",
		"metadata_directory",
		"file_directory",
		"dir_vars",
	}
}

func fileSheet(lib *library.Library, s *schema.Schema, item schema.File) Sheet {
	columns := fileColumns(s)
	numBookCols := len(bookColumns(s, true))
	booksSheet := fileio.DefaultCSVStem

	titleKeys := make(map[string]string, len(lib.Books))
	for _, b := range lib.Books {
		titleKeys[b.Title.Sort] = b.Title.Key()
	}

	var rows [][]string
	for _, f := range lib.Files {
		bookTitleKey := titleKeys[f.BookTitleSort]
		rows = append(rows, []string{
			fileKey(bookTitleKey, f.Basename),
			"=" + vlookup(booksSheet, bookTitleKey, len(lib.Books), numBookCols, columns[1]),
			"=" + vlookup(booksSheet, bookTitleKey, len(lib.Books), numBookCols, columns[2]),
			f.Basename,
			f.Hash,
			f.Path,
			f.MetadataDir,
			f.InputDir,
			book.FormatDirVars(f.DirVars),
		})
	}
	return Sheet{Stem: SheetStem(item.Name()), Columns: columns, Rows: rows}
}
