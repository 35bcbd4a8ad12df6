package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

const testSchemaJSON = `{
	"title": "title",
	"authors": "sortdisplay",
	"date_published": {
		"type": "date",
		"input_format": "2006-01-02",
		"output_format": "January 2, 2006"
	},
	"book_files": "file",
	"identifiers": {
		"type": "keyvalue",
		"key_label": "name",
		"value_label": "value"
	},
	"notes": {"type": "string", "inline": true}
}`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(testSchemaJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := schema.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCreateTableBookSQL(t *testing.T) {
	s := testSchema(t)

	t.Run("int keys", func(t *testing.T) {
		got := createTableBookSQL(s, false)
		for _, want := range []string{
			"CREATE TABLE book (",
			"pkey INT PRIMARY KEY",
			"metadata_directory TEXT UNIQUE NOT NULL",
			"title_sort TEXT UNIQUE NOT NULL",
			"title_display TEXT UNIQUE NOT NULL",
			"date_published TEXT",
			"notes TEXT",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("statement missing %q:\n%s", want, got)
			}
		}
		if strings.Contains(got, "WITHOUT ROWID") {
			t.Error("int-keyed book table should keep its rowid")
		}
		// Relational fields live in their own tables.
		for _, absent := range []string{"authors", "book_files", "identifiers"} {
			if strings.Contains(got, absent) {
				t.Errorf("statement should not mention %q:\n%s", absent, got)
			}
		}
	})

	t.Run("uuid keys", func(t *testing.T) {
		got := createTableBookSQL(s, true)
		if !strings.Contains(got, "pkey TEXT PRIMARY KEY") {
			t.Errorf("statement missing TEXT pkey:\n%s", got)
		}
		if !strings.HasSuffix(got, ") WITHOUT ROWID") {
			t.Errorf("uuid-keyed book table should be WITHOUT ROWID:\n%s", got)
		}
	})
}

func TestInsertBookSQL(t *testing.T) {
	s := testSchema(t)
	stmt, columns := insertBookSQL(s)

	wantColumns := []string{
		"pkey", "metadata_directory",
		"title_sort", "title_display",
		"date_published", "notes",
	}
	if strings.Join(columns, ",") != strings.Join(wantColumns, ",") {
		t.Errorf("columns = %v, want %v", columns, wantColumns)
	}
	if got := strings.Count(stmt, "?"); got != len(wantColumns) {
		t.Errorf("placeholder count = %d, want %d", got, len(wantColumns))
	}
}

func TestSortDisplayTableSQL(t *testing.T) {
	if got := createTableSortDisplaySQL("authors", false); !strings.Contains(got, "CREATE TABLE authors (") ||
		!strings.Contains(got, "sort TEXT UNIQUE NOT NULL") {
		t.Errorf("unexpected statement:\n%s", got)
	}

	got := createTableSortDisplayJoinSQL("authors", true)
	for _, want := range []string{
		"CREATE TABLE book_authors (",
		"book_pkey TEXT REFERENCES book(pkey)",
		"authors_pkey TEXT REFERENCES authors(pkey)",
		"PRIMARY KEY (book_pkey, authors_pkey)",
		"WITHOUT ROWID",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("statement missing %q:\n%s", want, got)
		}
	}
}

func TestCreateViewSummarySQL(t *testing.T) {
	s := testSchema(t)
	got := createViewSummarySQL(s)

	// Every relational field gets an ordered window aggregation; bare
	// group_concat ordering is not guaranteed by SQLite.
	for _, fieldname := range []string{"authors", "book_files", "identifiers"} {
		if !strings.Contains(got, fieldname+"_concat AS (") {
			t.Errorf("missing CTE for %q", fieldname)
		}
	}
	if !strings.Contains(got, "ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING") {
		t.Error("aggregation is not windowed")
	}
	if !strings.Contains(got, "LEFT OUTER JOIN") {
		t.Error("books without relational rows would be dropped")
	}
	if !strings.Contains(got, "ORDER BY\n    book.title_sort") {
		t.Error("summary view is not ordered by title sort")
	}
}
