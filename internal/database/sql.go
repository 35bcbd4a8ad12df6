// Package database projects the normalized collection into a SQLite
// database: tables, join tables and denormalizing views generated from the
// schema.
package database

import (
	"fmt"
	"strings"

	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

// keyColumnType returns the SQL type of the assigned key columns.
func keyColumnType(useUUIDKey bool) string {
	if useUUIDKey {
		return "TEXT"
	}
	return "INT"
}

// withoutRowid returns the WITHOUT ROWID suffix for text-keyed tables.
func withoutRowid(useUUIDKey bool) string {
	if useUUIDKey {
		return " WITHOUT ROWID"
	}
	return ""
}

func createTableBookSQL(s *schema.Schema, useUUIDKey bool) string {
	lines := []string{
		"CREATE TABLE book (",
		fmt.Sprintf("    pkey %s PRIMARY KEY,", keyColumnType(useUUIDKey)),
		"    metadata_directory TEXT UNIQUE NOT NULL,",
	}
	for _, item := range s.Items() {
		switch item.(type) {
		case schema.Date, schema.String:
			lines = append(lines, fmt.Sprintf("    %s TEXT,", item.Name()))
		case schema.Title:
			lines = append(lines,
				fmt.Sprintf("    %s_sort TEXT UNIQUE NOT NULL,", item.Name()),
				fmt.Sprintf("    %s_display TEXT UNIQUE NOT NULL,", item.Name()))
		}
	}
	lines[len(lines)-1] = strings.TrimSuffix(lines[len(lines)-1], ",")
	lines = append(lines, ")"+withoutRowid(useUUIDKey))
	return strings.Join(lines, "\n")
}

// insertBookSQL returns the book INSERT statement and its column order.
func insertBookSQL(s *schema.Schema) (string, []string) {
	columns := []string{"pkey", "metadata_directory"}
	for _, item := range s.Items() {
		switch item.(type) {
		case schema.Date, schema.String:
			columns = append(columns, item.Name())
		case schema.Title:
			columns = append(columns, item.Name()+"_sort", item.Name()+"_display")
		}
	}
	return insertSQL("book", columns), columns
}

// insertSQL builds an INSERT with positional placeholders.
func insertSQL(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (\n    %s\n) VALUES (\n    %s\n)",
		table, strings.Join(columns, ", "), placeholders)
}

func createTableBookFileSQL(fieldname string, useUUIDKey bool) string {
	return fmt.Sprintf(`CREATE TABLE book_%s (
    book_pkey %s REFERENCES book(pkey),
    file_name TEXT UNIQUE NOT NULL,
    file_hash TEXT UNIQUE NOT NULL,
    file_full_path TEXT UNIQUE NOT NULL,
    metadata_directory TEXT NOT NULL,
    file_directory TEXT NOT NULL,
    dir_vars TEXT,
    PRIMARY KEY (book_pkey, file_name)
) WITHOUT ROWID`, fieldname, keyColumnType(useUUIDKey))
}

func insertBookFileSQL(fieldname string) (string, []string) {
	columns := []string{
		"book_pkey", "file_name", "file_hash", "file_full_path",
		"metadata_directory", "file_directory", "dir_vars",
	}
	return insertSQL("book_"+fieldname, columns), columns
}

func createViewBookFileSQL(fieldname, titleField string) string {
	return fmt.Sprintf(`CREATE VIEW v_book_%[1]s AS
SELECT
    cast(book.pkey || ':' || book_%[1]s.file_name AS TEXT) AS unique_key,
    book.%[2]s_sort AS %[2]s_sort,
    book.%[2]s_display AS %[2]s_display,
    book_%[1]s.file_name,
    book_%[1]s.file_hash,
    book_%[1]s.file_full_path,
    book_%[1]s.metadata_directory,
    book_%[1]s.file_directory,
    book_%[1]s.dir_vars
FROM
    book,
    book_%[1]s
WHERE
    book.pkey=book_%[1]s.book_pkey
ORDER BY
    book.%[2]s_sort,
    book_%[1]s.file_name`, fieldname, titleField)
}

func createTableKeyValueSQL(item schema.KeyValue, useUUIDKey bool) string {
	return fmt.Sprintf(`CREATE TABLE book_%s (
    book_pkey %s REFERENCES book(pkey),
    %s TEXT NOT NULL,
    %s TEXT NOT NULL,
    PRIMARY KEY (book_pkey, %s)
) WITHOUT ROWID`, item.Name(), keyColumnType(useUUIDKey), item.KeyLabel, item.ValueLabel, item.KeyLabel)
}

func insertKeyValueSQL(item schema.KeyValue) (string, []string) {
	columns := []string{"book_pkey", item.KeyLabel, item.ValueLabel}
	return insertSQL("book_"+item.Name(), columns), columns
}

func createViewKeyValueSQL(item schema.KeyValue, titleField string) string {
	return fmt.Sprintf(`CREATE VIEW v_book_%[1]s AS
SELECT
    cast(book.pkey || ':' || book_%[1]s.%[3]s AS TEXT) AS unique_key,
    book.%[2]s_sort AS %[2]s_sort,
    book.%[2]s_display AS %[2]s_display,
    book_%[1]s.%[3]s,
    book_%[1]s.%[4]s
FROM
    book,
    book_%[1]s
WHERE
    book.pkey=book_%[1]s.book_pkey
ORDER BY
    book.%[2]s_sort,
    book_%[1]s.%[3]s`, item.Name(), titleField, item.KeyLabel, item.ValueLabel)
}

func createTableSortDisplaySQL(fieldname string, useUUIDKey bool) string {
	return fmt.Sprintf(`CREATE TABLE %s (
    pkey %s PRIMARY KEY,
    sort TEXT UNIQUE NOT NULL,
    display TEXT UNIQUE NOT NULL
)%s`, fieldname, keyColumnType(useUUIDKey), withoutRowid(useUUIDKey))
}

func insertSortDisplaySQL(fieldname string) (string, []string) {
	columns := []string{"pkey", "sort", "display"}
	return insertSQL(fieldname, columns), columns
}

func createTableSortDisplayJoinSQL(fieldname string, useUUIDKey bool) string {
	keyType := keyColumnType(useUUIDKey)
	return fmt.Sprintf(`CREATE TABLE book_%[1]s (
    book_pkey %[2]s REFERENCES book(pkey),
    %[1]s_pkey %[2]s REFERENCES %[1]s(pkey),
    PRIMARY KEY (book_pkey, %[1]s_pkey)
) WITHOUT ROWID`, fieldname, keyType)
}

func insertSortDisplayJoinSQL(fieldname string) (string, []string) {
	columns := []string{"book_pkey", fieldname + "_pkey"}
	return insertSQL("book_"+fieldname, columns), columns
}

func createViewSortDisplaySQL(fieldname, titleField string) string {
	return fmt.Sprintf(`CREATE VIEW v_book_%[1]s AS
SELECT
    cast(book.pkey || ':' || %[1]s.pkey AS TEXT) AS unique_key,
    book.%[2]s_sort AS %[2]s_sort,
    book.%[2]s_display AS %[2]s_display,
    %[1]s.sort AS %[1]s_sort,
    %[1]s.display AS %[1]s_display
FROM
    book,
    book_%[1]s,
    %[1]s
WHERE
    book.pkey=book_%[1]s.book_pkey AND
    book_%[1]s.%[1]s_pkey=%[1]s.pkey
ORDER BY
    book.%[2]s_sort,
    %[1]s.sort`, fieldname, titleField)
}

// summaryOtherCTESQL builds the summary CTE for file and keyvalue fields.
//
// group_concat cannot be ordered directly in SQLite and its element order
// is documented as arbitrary, so the aggregation runs as a window function
// with an explicit ORDER BY. That ordering is a contract of the summary
// view, not an implementation nicety.
func summaryOtherCTESQL(fieldname, col1, col2, delim string) string {
	return fmt.Sprintf(`%[1]s_concat AS (
    SELECT DISTINCT
        book_pkey,
        group_concat(book_%[1]s_combined, ';') OVER (
            PARTITION BY
                book_pkey
            ORDER BY
                book_%[1]s_combined
            ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING
        ) AS %[1]s
    FROM (
        SELECT
            book.pkey AS book_pkey,
            book_%[1]s.%[2]s || '%[4]s' || book_%[1]s.%[3]s AS book_%[1]s_combined
        FROM
            book,
            book_%[1]s
        WHERE
            book.pkey=book_%[1]s.book_pkey
    )
),`, fieldname, col1, col2, delim)
}

// summarySortDisplayCTESQL builds the summary CTE for sortdisplay fields.
// See summaryOtherCTESQL for the ordering contract.
func summarySortDisplayCTESQL(fieldname string) string {
	return fmt.Sprintf(`%[1]s_concat AS (
    SELECT DISTINCT
        book_pkey,
        group_concat(%[1]s_sort, ';') OVER (
            PARTITION BY
                book_pkey
            ORDER BY
                %[1]s_sort
            ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING
        ) AS %[1]s_sort,
        group_concat(%[1]s_display, ';') OVER (
            PARTITION BY
                book_pkey
            ORDER BY
                %[1]s_display
            ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING
        ) AS %[1]s_display
    FROM (
        SELECT
            book.pkey AS book_pkey,
            %[1]s.sort AS %[1]s_sort,
            %[1]s.display AS %[1]s_display
        FROM
            book,
            book_%[1]s,
            %[1]s
        WHERE
            book.pkey=book_%[1]s.book_pkey AND
            book_%[1]s.%[1]s_pkey=%[1]s.pkey
    )
),`, fieldname)
}

func createViewSummarySQL(s *schema.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE VIEW v_summary AS\nWITH\n")

	var ctes []string
	for _, item := range s.Items() {
		switch item := item.(type) {
		case schema.File:
			ctes = append(ctes, summaryOtherCTESQL(item.Name(), "file_name", "file_hash", "::"))
		case schema.KeyValue:
			ctes = append(ctes, summaryOtherCTESQL(item.Name(), item.KeyLabel, item.ValueLabel, ":"))
		case schema.SortDisplay:
			ctes = append(ctes, summarySortDisplayCTESQL(item.Name()))
		}
	}
	ctes[len(ctes)-1] = strings.TrimSuffix(ctes[len(ctes)-1], ",")
	b.WriteString(strings.Join(ctes, "\n"))

	titleField := s.TitleField()
	columns := []string{"    book.pkey AS book_pkey", "    book.metadata_directory"}
	for _, item := range s.Items() {
		switch item.(type) {
		case schema.Date, schema.String:
			columns = append(columns, fmt.Sprintf("    book.%s", item.Name()))
		case schema.File, schema.KeyValue:
			columns = append(columns,
				fmt.Sprintf("    cast(%[1]s_concat.%[1]s AS TEXT) AS %[1]s", item.Name()))
		case schema.SortDisplay:
			columns = append(columns,
				fmt.Sprintf("    cast(%[1]s_concat.%[1]s_sort AS TEXT) AS %[1]s_sort", item.Name()),
				fmt.Sprintf("    cast(%[1]s_concat.%[1]s_display AS TEXT) AS %[1]s_display", item.Name()))
		case schema.Title:
			columns = append(columns,
				fmt.Sprintf("    book.%s_sort", item.Name()),
				fmt.Sprintf("    book.%s_display", item.Name()))
		}
	}
	b.WriteString("\nSELECT\n")
	b.WriteString(strings.Join(columns, ",\n"))
	b.WriteString("\nFROM\n    book")

	for _, item := range s.Items() {
		switch item.(type) {
		case schema.File, schema.KeyValue, schema.SortDisplay:
			b.WriteString(fmt.Sprintf(`
LEFT OUTER JOIN
    %[1]s_concat
    ON
    book.pkey=%[1]s_concat.book_pkey`, item.Name()))
		}
	}

	b.WriteString(fmt.Sprintf(`
GROUP BY
    book.%[1]s_sort
ORDER BY
    book.%[1]s_sort`, titleField))

	return b.String()
}
