package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
)

// BookDirs returns every book dir under the given library dirs: the
// non-hidden children holding a metadata.json. Library dir input order is
// kept; book dirs are sorted within each library dir.
func BookDirs(libraryDirs []string) ([]string, error) {
	var bookDirs []string
	for _, libraryDir := range libraryDirs {
		if _, err := os.Stat(fileio.MetadataPath(libraryDir)); err == nil {
			return nil, fmt.Errorf("specified library dir '%s' has a 'metadata.json' file and might be a book directory",
				libraryDir)
		}

		entries, err := os.ReadDir(libraryDir)
		if err != nil {
			return nil, fmt.Errorf("cannot read library dir '%s': %w", libraryDir, err)
		}

		var dirs []string
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dir := filepath.Join(libraryDir, entry.Name())
			if _, err := os.Stat(fileio.MetadataPath(dir)); err == nil {
				dirs = append(dirs, dir)
			}
		}
		sort.Strings(dirs)
		bookDirs = append(bookDirs, dirs...)
	}

	if len(bookDirs) == 0 {
		return nil, fmt.Errorf("no book directories found")
	}
	return bookDirs, nil
}
