package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/book"
	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/hash"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/schema"
	"github.com/jeremyn/simple-ebook-manager/internal/ui"
)

const cleanProgressBatch = 100

var (
	cleanFlags          libraryFlags
	cleanNewline        string
	cleanUpdateHash     string
	cleanReplaceUnicode bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean metadata and associated text files",
	Long: `Clean metadata and associated text files by standardizing whitespace and
layout, adding headers, replacing certain Unicode symbols and more.
Optionally update MD5/SHA256 hashes for book files. Only files whose
contents would change are rewritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryDirs, err := cleanFlags.resolveLibraryDirs()
		if err != nil {
			return err
		}
		dirVars, err := cleanFlags.resolveDirVars()
		if err != nil {
			return err
		}
		s, err := cleanFlags.resolveSchema(libraryDirs)
		if err != nil {
			return err
		}

		ui.Infof("Collecting book data.")
		lib, err := library.Load(libraryDirs, dirVars, s, library.KeyNone)
		if err != nil {
			return err
		}

		newline, err := resolveNewline(lib)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("update-hash") {
			if err := updateHashes(lib); err != nil {
				return err
			}
		}

		return cleanBooks(lib, s, book.WriteOptions{
			Newline:        newline,
			ReplaceUnicode: cleanReplaceUnicode,
		})
	},
}

// resolveNewline picks the output newline: the flag, then the config,
// then autodetection from the first book's metadata file.
func resolveNewline(lib *library.Library) (fileio.Newline, error) {
	choice := cleanNewline
	if choice == "" {
		choice = cfg.Newline
	}
	if choice != "" {
		return fileio.ParseNewline(choice)
	}
	return fileio.DetectNewline(fileio.MetadataPath(lib.Books[0].MetadataDir))
}

// resolveAlgorithm picks the hashing algorithm for --update-hash:
// an explicit flag value, then the config, then autodetection from an
// existing hash.
func resolveAlgorithm(lib *library.Library) (hash.Algorithm, error) {
	choice := cleanUpdateHash
	if choice == "autodetect" && cfg.HashAlgorithm != "" {
		choice = cfg.HashAlgorithm
	}
	if choice != "autodetect" {
		return hash.Parse(choice)
	}

	first := lib.Files[0]
	algo, err := hash.Detect(first.Hash)
	if err != nil {
		return "", fmt.Errorf("'--update-hash' provided without algorithm and autodetect failed on the hash for '%s' in '%s'",
			first.Basename, fileio.MetadataPath(first.MetadataDir))
	}
	return algo, nil
}

// updateHashes recomputes every file hash concurrently and writes
// corrected values back into the books, reporting each mismatch.
func updateHashes(lib *library.Library) error {
	algo, err := resolveAlgorithm(lib)
	if err != nil {
		return err
	}

	paths := make([]string, len(lib.Files))
	for i, f := range lib.Files {
		paths[i] = f.Path
	}
	ui.Infof("Calculating file hashes.")
	digests, err := hash.Files(paths, algo)
	if err != nil {
		return err
	}
	ui.Infof("Done calculating file hashes.")

	for _, b := range lib.Books {
		for i := range b.Files {
			f := &b.Files[i]
			if digest := digests[f.Path]; digest != f.Hash {
				ui.Infof("'%s': hash mismatch: calculated: '%s', hash in metadata file: '%s', metadata file: '%s'.",
					f.Path, digest, f.Hash, fileio.MetadataPath(f.MetadataDir))
				f.Hash = digest
			}
		}
	}
	return nil
}

// cleanBooks regenerates each book's files into a scratch dir and moves
// over only the ones whose contents changed.
func cleanBooks(lib *library.Library, s *schema.Schema, opts book.WriteOptions) error {
	ui.Infof("Starting processing.")

	changesFound := false
	for i, b := range lib.Books {
		scratchDir, err := os.MkdirTemp("", "sem-clean-*")
		if err != nil {
			return fmt.Errorf("cannot create temp dir: %w", err)
		}

		written, err := b.WriteMetadata(scratchDir, s, opts)
		if err != nil {
			os.RemoveAll(scratchDir)
			return err
		}
		changed, err := replaceChangedFiles(b, written)
		os.RemoveAll(scratchDir)
		if err != nil {
			return err
		}
		changesFound = changesFound || changed

		if (i+1)%cleanProgressBatch == 0 || i+1 == len(lib.Books) {
			ui.Infof("Processed %s.", countBooks(i+1))
		}
	}

	if changesFound {
		ui.Infof("Finished processing, changes made!")
	} else {
		ui.Infof("Finished processing, no changes needed.")
	}
	return nil
}

// replaceChangedFiles moves regenerated files over the originals when the
// contents differ. A missing original counts as changed.
func replaceChangedFiles(b *book.Book, written []string) (bool, error) {
	changed := false
	for _, path := range written {
		origPath := filepath.Join(b.MetadataDir, filepath.Base(path))

		if _, err := os.Stat(origPath); err == nil {
			same, err := fileio.SameContents(path, origPath)
			if err != nil {
				return false, err
			}
			if same {
				continue
			}
		}

		if err := moveFile(path, origPath); err != nil {
			return false, err
		}
		changed = true
		ui.Infof("'%s': file changed.", ui.Path(origPath))
	}
	return changed, nil
}

// moveFile renames src over dst, falling back to copy+remove when the
// scratch dir is on another filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot read '%s': %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cannot write '%s': %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cannot write '%s': %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("cannot write '%s': %w", dst, err)
	}
	return os.Remove(src)
}

func init() {
	addLibraryFlags(cleanCmd, &cleanFlags)
	cleanCmd.Flags().StringVar(&cleanNewline, "newline", "",
		"newline convention, posix or windows (defaults to autodetect from library)")
	cleanCmd.Flags().StringVar(&cleanUpdateHash, "update-hash", "",
		"update file hashes: leave blank or pass 'autodetect' to detect from library, or pass 'md5' or 'sha256'")
	cleanCmd.Flags().Lookup("update-hash").NoOptDefVal = "autodetect"
	cleanCmd.Flags().BoolVar(&cleanReplaceUnicode, "replace-unicode", false,
		"replace certain Unicode symbols in non-inline string text files with ASCII equivalents")
	rootCmd.AddCommand(cleanCmd)
}
