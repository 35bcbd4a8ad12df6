package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jeremyn/simple-ebook-manager/internal/book"
	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

const insertBatchSize = 1000

// Options control database generation.
type Options struct {
	// UseUUIDKey selects TEXT (uuid) keys instead of INT keys.
	UseUUIDKey bool
	// UserSQLPath, if set, is a SQL script executed after the build.
	UserSQLPath string
	// Logf receives progress messages. Nil disables them.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Build creates the database at path from the normalized collection. An
// existing database is replaced. All inserts run in one transaction:
// either the complete database is produced or nothing is.
func Build(path string, lib *library.Library, s *schema.Schema, opts Options) error {
	if _, err := os.Stat(path); err == nil {
		opts.logf("Overwriting existing database file '%s'.", path)
		if err := removeDatabaseFiles(path); err != nil {
			return err
		}
	}
	opts.logf("Creating '%s'.", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("cannot open database '%s': %w", path, err)
	}
	defer db.Close()
	// A single connection so the PRAGMA below applies to every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("cannot enable foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createTables(tx, s, opts.UseUUIDKey); err != nil {
		return err
	}
	if err := insertSortDisplays(tx, lib, s, opts); err != nil {
		return err
	}
	if err := insertBooks(tx, lib, s, opts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %w", err)
	}

	if opts.UserSQLPath != "" {
		opts.logf("Running user SQL file '%s'.", opts.UserSQLPath)
		script, err := fileio.ReadText(opts.UserSQLPath)
		if err != nil {
			return err
		}
		if _, err := db.Exec(strings.TrimSpace(script)); err != nil {
			return fmt.Errorf("user SQL file '%s' failed: %w", opts.UserSQLPath, err)
		}
	}

	opts.logf("Finished creating '%s'.", path)
	return nil
}

func removeDatabaseFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot remove '%s': %w", p, err)
		}
	}
	return nil
}

// createTables creates all tables and views in dependency order: the book
// table, then per-field tables and views, then the summary view.
func createTables(tx *sql.Tx, s *schema.Schema, useUUIDKey bool) error {
	statements := []string{createTableBookSQL(s, useUUIDKey)}

	titleField := s.TitleField()
	for _, item := range s.Items() {
		switch item := item.(type) {
		case schema.File:
			statements = append(statements,
				createTableBookFileSQL(item.Name(), useUUIDKey),
				createViewBookFileSQL(item.Name(), titleField))
		case schema.KeyValue:
			statements = append(statements,
				createTableKeyValueSQL(item, useUUIDKey),
				createViewKeyValueSQL(item, titleField))
		case schema.SortDisplay:
			statements = append(statements,
				createTableSortDisplaySQL(item.Name(), useUUIDKey),
				createTableSortDisplayJoinSQL(item.Name(), useUUIDKey),
				createViewSortDisplaySQL(item.Name(), titleField))
		}
	}
	statements = append(statements, createViewSummarySQL(s))

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("cannot create tables: %w", err)
		}
	}
	return nil
}

func insertSortDisplays(tx *sql.Tx, lib *library.Library, s *schema.Schema, opts Options) error {
	for _, item := range s.Items() {
		if _, ok := item.(schema.SortDisplay); !ok {
			continue
		}
		stmtSQL, _ := insertSortDisplaySQL(item.Name())
		stmt, err := tx.Prepare(stmtSQL)
		if err != nil {
			return fmt.Errorf("cannot prepare insert for '%s': %w", item.Name(), err)
		}
		for _, sd := range lib.Fields[item.Name()] {
			if _, err := stmt.Exec(sd.Key(), sd.Sort, sd.Display); err != nil {
				stmt.Close()
				return fmt.Errorf("cannot insert '%s' row: %w", item.Name(), err)
			}
		}
		stmt.Close()
		opts.logf("Inserted data type '%s'.", item.Name())
	}
	return nil
}

func insertBooks(tx *sql.Tx, lib *library.Library, s *schema.Schema, opts Options) error {
	bookSQL, _ := insertBookSQL(s)
	bookStmt, err := tx.Prepare(bookSQL)
	if err != nil {
		return fmt.Errorf("cannot prepare book insert: %w", err)
	}
	defer bookStmt.Close()

	related := make(map[string]*sql.Stmt)
	relatedStmt := func(stmtSQL string) (*sql.Stmt, error) {
		if stmt, ok := related[stmtSQL]; ok {
			return stmt, nil
		}
		stmt, err := tx.Prepare(stmtSQL)
		if err != nil {
			return nil, err
		}
		related[stmtSQL] = stmt
		return stmt, nil
	}
	defer func() {
		for _, stmt := range related {
			stmt.Close()
		}
	}()

	for i, b := range lib.Books {
		if err := insertOneBook(bookStmt, relatedStmt, b, s); err != nil {
			return err
		}
		if (i+1)%insertBatchSize == 0 || i+1 == len(lib.Books) {
			opts.logf("Inserted %s into database.", countBooks(i+1))
		}
	}
	return nil
}

func countBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

// insertOneBook inserts the book row plus its file, keyvalue and join
// rows, in schema order.
func insertOneBook(bookStmt *sql.Stmt, relatedStmt func(string) (*sql.Stmt, error), b *book.Book, s *schema.Schema) error {
	args := []any{b.Title.Key(), b.MetadataDir}
	type relatedInsert struct {
		sql  string
		args []any
	}
	var relatedInserts []relatedInsert

	for _, item := range s.Items() {
		switch item := item.(type) {
		case schema.Date:
			if date := b.Fields.Dates[item.Name()]; date != nil {
				args = append(args, date.Format(item.OutputFormat))
			} else {
				args = append(args, nil)
			}

		case schema.File:
			stmtSQL, _ := insertBookFileSQL(item.Name())
			for _, f := range b.Files {
				relatedInserts = append(relatedInserts, relatedInsert{
					sql: stmtSQL,
					args: []any{
						b.Title.Key(), f.Basename, f.Hash, f.Path,
						f.MetadataDir, f.InputDir, book.FormatDirVars(f.DirVars),
					},
				})
			}

		case schema.KeyValue:
			stmtSQL, _ := insertKeyValueSQL(item)
			for _, kv := range b.Fields.KeyValues[item.Name()] {
				relatedInserts = append(relatedInserts, relatedInsert{
					sql:  stmtSQL,
					args: []any{b.Title.Key(), kv.Key, kv.Value},
				})
			}

		case schema.SortDisplay:
			stmtSQL, _ := insertSortDisplayJoinSQL(item.Name())
			for _, sd := range b.Fields.SortDisplays[item.Name()] {
				relatedInserts = append(relatedInserts, relatedInsert{
					sql:  stmtSQL,
					args: []any{b.Title.Key(), sd.Key()},
				})
			}

		case schema.String:
			if value := b.Fields.Strings[item.Name()]; value != nil {
				args = append(args, *value)
			} else {
				args = append(args, nil)
			}

		case schema.Title:
			args = append(args, b.Title.Sort, b.Title.Display)
		}
	}

	if _, err := bookStmt.Exec(args...); err != nil {
		return fmt.Errorf("cannot insert book '%s': %w", b.Title.Sort, err)
	}
	for _, ins := range relatedInserts {
		stmt, err := relatedStmt(ins.sql)
		if err != nil {
			return fmt.Errorf("cannot prepare insert: %w", err)
		}
		if _, err := stmt.Exec(ins.args...); err != nil {
			return fmt.Errorf("cannot insert related row for book '%s': %w", b.Title.Sort, err)
		}
	}
	return nil
}
