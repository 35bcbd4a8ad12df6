package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

func testLibrary(t *testing.T, s *schema.Schema, mode library.KeyMode) *library.Library {
	t.Helper()

	metadatas := map[string]string{
		"alpha": `{
			"title": "Alpha",
			"authors": [
				{"sort": "One, Author", "display": "Author One"},
				{"sort": "Two, Author", "display": "Author Two"}
			],
			"date_published": "2020-05-01",
			"book_files": {"hash": "md5:a1", "name": "alpha.epub"},
			"identifiers": {"isbn": "1", "oclc": "2"},
			"notes": "n1"
		}`,
		"beta": `{
			"title": "Beta",
			"authors": {"sort": "Two, Author", "display": "Author Two"},
			"book_files": {"hash": "md5:b1", "name": "beta.epub"}
		}`,
	}
	libDir := t.TempDir()
	for name, metadata := range metadatas {
		bookDir := filepath.Join(libDir, name)
		require.NoError(t, os.Mkdir(bookDir, 0o755))
		require.NoError(t, os.WriteFile(fileio.MetadataPath(bookDir), []byte(metadata), 0o644))
	}

	lib, err := library.Load([]string{libDir}, nil, s, mode)
	require.NoError(t, err)
	return lib
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBuild(t *testing.T) {
	s := testSchema(t)
	lib := testLibrary(t, s, library.KeyInt)
	path := fileio.DBPath(t.TempDir())

	require.NoError(t, Build(path, lib, s, Options{}))
	db := openDB(t, path)

	t.Run("summary view", func(t *testing.T) {
		rows, err := db.Query(`
			SELECT book_pkey, title_sort, authors_sort, authors_display,
			       book_files, identifiers, date_published, notes
			FROM v_summary`)
		require.NoError(t, err)
		defer rows.Close()

		type summaryRow struct {
			pkey                            int
			titleSort                       string
			authorsSort, authorsDisplay     sql.NullString
			files, identifiers, date, notes sql.NullString
		}
		var got []summaryRow
		for rows.Next() {
			var r summaryRow
			require.NoError(t, rows.Scan(&r.pkey, &r.titleSort, &r.authorsSort,
				&r.authorsDisplay, &r.files, &r.identifiers, &r.date, &r.notes))
			got = append(got, r)
		}
		require.NoError(t, rows.Err())
		require.Len(t, got, 2)

		alpha := got[0]
		if alpha.pkey != 1 || alpha.titleSort != "Alpha" {
			t.Fatalf("first row = %+v", alpha)
		}
		// Concatenation order is part of the view's contract.
		if alpha.authorsSort.String != "One, Author;Two, Author" {
			t.Errorf("authors_sort = %q", alpha.authorsSort.String)
		}
		if alpha.authorsDisplay.String != "Author One;Author Two" {
			t.Errorf("authors_display = %q", alpha.authorsDisplay.String)
		}
		if alpha.files.String != "alpha.epub::md5:a1" {
			t.Errorf("book_files = %q", alpha.files.String)
		}
		if alpha.identifiers.String != "isbn:1;oclc:2" {
			t.Errorf("identifiers = %q", alpha.identifiers.String)
		}
		if alpha.date.String != "May 1, 2020" {
			t.Errorf("date_published = %q", alpha.date.String)
		}

		beta := got[1]
		if beta.pkey != 2 || beta.titleSort != "Beta" {
			t.Fatalf("second row = %+v", beta)
		}
		if beta.identifiers.Valid || beta.notes.Valid {
			t.Errorf("beta relational fields should be NULL: %+v", beta)
		}
	})

	t.Run("field view", func(t *testing.T) {
		rows, err := db.Query("SELECT title_sort, authors_sort FROM v_book_authors")
		require.NoError(t, err)
		defer rows.Close()

		var got []string
		for rows.Next() {
			var titleSort, authorSort string
			require.NoError(t, rows.Scan(&titleSort, &authorSort))
			got = append(got, titleSort+"/"+authorSort)
		}
		require.NoError(t, rows.Err())
		want := "Alpha/One, Author,Alpha/Two, Author,Beta/Two, Author"
		if strings.Join(got, ",") != want {
			t.Errorf("got %v", got)
		}
	})

	t.Run("authors deduplicated", func(t *testing.T) {
		var n int
		require.NoError(t, db.QueryRow("SELECT count(*) FROM authors").Scan(&n))
		if n != 2 {
			t.Errorf("authors rows = %d, want 2", n)
		}
	})
}

func TestBuildUUIDKeys(t *testing.T) {
	s := testSchema(t)
	lib := testLibrary(t, s, library.KeyUUID)
	path := fileio.DBPath(t.TempDir())

	require.NoError(t, Build(path, lib, s, Options{UseUUIDKey: true}))
	db := openDB(t, path)

	var colType string
	err := db.QueryRow(
		"SELECT type FROM pragma_table_info('book') WHERE name='pkey'").Scan(&colType)
	require.NoError(t, err)
	if colType != "TEXT" {
		t.Errorf("pkey type = %q, want TEXT", colType)
	}

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM v_summary").Scan(&n))
	if n != 2 {
		t.Errorf("summary rows = %d, want 2", n)
	}
}

func TestBuildOverwrites(t *testing.T) {
	s := testSchema(t)
	lib := testLibrary(t, s, library.KeyInt)
	path := fileio.DBPath(t.TempDir())

	var logs []string
	opts := Options{Logf: func(format string, args ...any) {
		logs = append(logs, format)
	}}

	require.NoError(t, Build(path, lib, s, opts))
	first := len(logs)
	require.NoError(t, Build(path, lib, s, opts))

	overwrote := false
	for _, format := range logs[first:] {
		if strings.Contains(format, "Overwriting existing database file") {
			overwrote = true
		}
	}
	if !overwrote {
		t.Error("second build did not report the overwrite")
	}

	db := openDB(t, path)
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM book").Scan(&n))
	if n != 2 {
		t.Errorf("book rows after rebuild = %d, want 2", n)
	}
}

func TestBuildUserSQL(t *testing.T) {
	s := testSchema(t)
	lib := testLibrary(t, s, library.KeyInt)
	dir := t.TempDir()
	path := fileio.DBPath(dir)

	scriptPath := filepath.Join(dir, "extra.sql")
	script := "CREATE VIEW v_custom AS SELECT title_sort FROM book;\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o644))

	require.NoError(t, Build(path, lib, s, Options{UserSQLPath: scriptPath}))

	db := openDB(t, path)
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM v_custom").Scan(&n))
	if n != 2 {
		t.Errorf("v_custom rows = %d, want 2", n)
	}

	t.Run("failing script aborts", func(t *testing.T) {
		badPath := filepath.Join(dir, "bad.sql")
		require.NoError(t, os.WriteFile(badPath, []byte("SELECT * FROM nonexistent;\n"), 0o644))
		err := Build(path, lib, s, Options{UserSQLPath: badPath})
		if err == nil || !strings.Contains(err.Error(), "user SQL file") {
			t.Errorf("got error %v", err)
		}
	})
}
