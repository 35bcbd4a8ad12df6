package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/book"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
	"github.com/jeremyn/simple-ebook-manager/internal/ui"
)

// libraryFlags are the flags shared by every command that reads the
// collection.
type libraryFlags struct {
	libraryDirs []string
	dirVars     []string
	schemaPath  string
}

func addLibraryFlags(cmd *cobra.Command, f *libraryFlags) {
	cmd.Flags().StringArrayVarP(&f.libraryDirs, "library-dirs", "l", nil,
		"one or more directories containing book directories to process")
	cmd.Flags().StringArrayVarP(&f.dirVars, "dir-vars", "d", nil,
		"book file directory substitution variables as NAME=VALUE, can be used more than once")
	cmd.Flags().StringVarP(&f.schemaPath, "schema", "s", "",
		"path to schema file (defaults to checking library dirs)")
}

// resolveLibraryDirs merges flag and config library dirs and validates
// them.
func (f *libraryFlags) resolveLibraryDirs() ([]string, error) {
	dirs := f.libraryDirs
	if len(dirs) == 0 {
		dirs = cfg.LibraryDirs
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no library dirs provided, use --library-dirs or set library_dirs in the config file")
	}

	seen := make(map[string]bool)
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("library dir '%s' is not a directory", dir)
		}
		if seen[dir] {
			return nil, fmt.Errorf("duplicate library dir found: '%s'", dir)
		}
		seen[dir] = true
	}
	return dirs, nil
}

// resolveDirVars merges config dir vars with flag dir vars (flags win)
// and returns them sorted by name.
func (f *libraryFlags) resolveDirVars() ([]book.DirVar, error) {
	values := make(map[string]string, len(cfg.DirVars))
	for name, value := range cfg.DirVars {
		values[name] = value
	}

	seen := make(map[string]bool)
	for _, raw := range f.dirVars {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid dir var '%s', expected NAME=VALUE", raw)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate dir var name found: '%s'", name)
		}
		seen[name] = true
		values[name] = value
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	dirVars := make([]book.DirVar, len(names))
	for i, name := range names {
		dirVars[i] = book.DirVar{Name: name, Value: values[name]}
	}
	return dirVars, nil
}

// resolveSchema discovers the schema and logs where it came from.
func (f *libraryFlags) resolveSchema(libraryDirs []string) (*schema.Schema, error) {
	s, paths, err := schema.Discover(f.schemaPath, libraryDirs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 1 {
		ui.Infof("Using schema from '%s'.", paths[0])
	} else {
		ui.Infof("Using matching schemas from: '%s'.", strings.Join(paths, "', '"))
	}
	return s, nil
}

// addOutputDirFlag registers -o; resolveOutputDir defaults to the first
// library dir.
func addOutputDirFlag(cmd *cobra.Command, outputDir *string) {
	cmd.Flags().StringVarP(outputDir, "output-dir", "o", "",
		"output directory (defaults to first library dir)")
}

func resolveOutputDir(outputDir string, libraryDirs []string) string {
	if outputDir != "" {
		return outputDir
	}
	return libraryDirs[0]
}

func countBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

// logCollecting mirrors the start-of-run progress line.
func logCollecting(useUUIDKey bool) {
	keyName := "integer"
	if useUUIDKey {
		keyName = "UUID"
	}
	ui.Infof("Collecting book data and assigning %s keys.", keyName)
}
