// Package library materializes the whole collection: it loads every book,
// validates cross-book invariants, deduplicates shared sortdisplay values
// and assigns them stable keys.
package library

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/jeremyn/simple-ebook-manager/internal/book"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
)

// KeyMode selects the key assigned to titles and sortdisplay values.
type KeyMode int

const (
	// KeyNone assigns no keys at all.
	KeyNone KeyMode = iota
	// KeyInt assigns 1-based ranks in sort order.
	KeyInt
	// KeyUUID assigns one fresh UUID4 per entity.
	KeyUUID
)

// Library is the normalized collection: books sorted by title, the
// per-field deduplicated and keyed sortdisplay registries, and every file
// across all books. It is the only input the CSV and database generators
// consume.
type Library struct {
	Books  []*book.Book
	Fields map[string][]book.SortDisplay
	Files  []book.File
}

// Load reads every book dir under the library dirs and produces the
// normalized collection. Any cross-book validation failure aborts the
// whole run; no partial result is ever returned.
func Load(libraryDirs []string, dirVars []book.DirVar, s *schema.Schema, mode KeyMode) (*Library, error) {
	bookDirs, err := BookDirs(libraryDirs)
	if err != nil {
		return nil, err
	}

	books, err := loadBooks(bookDirs, dirVars, s)
	if err != nil {
		return nil, err
	}

	registries, err := collectSortDisplays(books, mode)
	if err != nil {
		return nil, err
	}

	if mode != KeyNone {
		rewriteBooks(books, registries, mode)
	}

	var files []book.File
	for _, b := range books {
		files = append(files, b.Files...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Less(files[j]) })

	fields := make(map[string][]book.SortDisplay, len(registries))
	for fieldname, registry := range registries {
		fields[fieldname] = registry.ordered
	}

	return &Library{Books: books, Fields: fields, Files: files}, nil
}

// loadBooks loads each dir and enforces global title uniqueness: an
// identical (sort, display) pair, a display with two sorts, and a sort
// with two displays are each distinct errors.
func loadBooks(bookDirs []string, dirVars []book.DirVar, s *schema.Schema) ([]*book.Book, error) {
	pairs := make(map[book.Pair]bool)
	sorts := make(map[string]bool)
	displays := make(map[string]bool)

	var books []*book.Book
	for _, dir := range bookDirs {
		b, err := book.Load(dir, dirVars, s)
		if err != nil {
			return nil, err
		}

		switch {
		case pairs[b.Title.Pair()]:
			return nil, fmt.Errorf("the title with sort '%s' and display '%s' appears in more than one book",
				b.Title.Sort, b.Title.Display)
		case displays[b.Title.Display]:
			return nil, fmt.Errorf("the title display value '%s' has more than one sort value over all books",
				b.Title.Display)
		case sorts[b.Title.Sort]:
			return nil, fmt.Errorf("the title sort value '%s' has more than one display value over all books",
				b.Title.Sort)
		}
		pairs[b.Title.Pair()] = true
		sorts[b.Title.Sort] = true
		displays[b.Title.Display] = true

		books = append(books, b)
	}

	sort.Slice(books, func(i, j int) bool { return books[i].Less(books[j]) })
	return books, nil
}

// registry is one field's deduplicated value set: canonical keyed values
// in sort order plus a lookup from the unkeyed (sort, display) pair.
type registry struct {
	ordered []book.SortDisplay
	byPair  map[book.Pair]book.SortDisplay
}

// collectSortDisplays unions each sortdisplay field's values across all
// books, verifies the sort<->display bijection and assigns keys in sort
// order.
func collectSortDisplays(books []*book.Book, mode KeyMode) (map[string]*registry, error) {
	unions := make(map[string]map[book.Pair]bool)
	for _, b := range books {
		for fieldname, sds := range b.Fields.SortDisplays {
			union, ok := unions[fieldname]
			if !ok {
				union = make(map[book.Pair]bool)
				unions[fieldname] = union
			}
			for _, sd := range sds {
				union[sd.Pair()] = true
			}
		}
	}

	registries := make(map[string]*registry, len(unions))
	for fieldname, union := range unions {
		pairs := make([]book.Pair, 0, len(union))
		for pair := range union {
			pairs = append(pairs, pair)
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].Sort != pairs[j].Sort {
				return pairs[i].Sort < pairs[j].Sort
			}
			return pairs[i].Display < pairs[j].Display
		})

		for i := 1; i < len(pairs); i++ {
			if pairs[i].Sort == pairs[i-1].Sort {
				return nil, duplicateValueError(fieldname, "sort", pairs[i].Sort)
			}
		}
		seenDisplays := make(map[string]bool, len(pairs))
		for _, pair := range pairs {
			if seenDisplays[pair.Display] {
				return nil, duplicateValueError(fieldname, "display", pair.Display)
			}
			seenDisplays[pair.Display] = true
		}

		reg := &registry{byPair: make(map[book.Pair]book.SortDisplay, len(pairs))}
		for i, pair := range pairs {
			sd := book.NewSortDisplay(pair.Sort, pair.Display)
			if key, ok := makeKey(mode, i); ok {
				sd = sd.WithKey(key)
			}
			reg.ordered = append(reg.ordered, sd)
			reg.byPair[pair] = sd
		}
		registries[fieldname] = reg
	}

	return registries, nil
}

func duplicateValueError(fieldname, kind, value string) error {
	other := "display"
	if kind == "display" {
		other = "sort"
	}
	return fmt.Errorf("for field '%s' the %s value '%s' has more than one %s value over all books",
		fieldname, kind, value, other)
}

// makeKey returns the key for rank i (0-based) under mode.
func makeKey(mode KeyMode, i int) (string, bool) {
	switch mode {
	case KeyInt:
		return strconv.Itoa(i + 1), true
	case KeyUUID:
		return uuid.NewString(), true
	}
	return "", false
}

// rewriteBooks replaces every unkeyed sortdisplay value with the canonical
// keyed value sharing its (sort, display) pair, and keys each title by the
// book's rank among all books.
func rewriteBooks(books []*book.Book, registries map[string]*registry, mode KeyMode) {
	for i, b := range books {
		key, _ := makeKey(mode, i)
		b.Title = b.Title.WithKey(key)
		for fieldname, sds := range b.Fields.SortDisplays {
			keyed := make([]book.SortDisplay, len(sds))
			for j, sd := range sds {
				keyed[j] = registries[fieldname].byPair[sd.Pair()]
			}
			b.Fields.SortDisplays[fieldname] = keyed
		}
	}
}
