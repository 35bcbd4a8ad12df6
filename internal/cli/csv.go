package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/export"
	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/ui"
)

var (
	csvFlags      libraryFlags
	csvOutputDir  string
	csvSplit      bool
	csvUseUUIDKey bool
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Create one or more CSV files from book metadata",
	Long: `Create one or more CSV files from book metadata. By default, a single
'books.csv' file is created. With --split, multiple CSV files are created
that can be added as worksheets in the same spreadsheet, each worksheet
named after the corresponding CSV file. Existing output files are
overwritten without asking for confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryDirs, err := csvFlags.resolveLibraryDirs()
		if err != nil {
			return err
		}
		dirVars, err := csvFlags.resolveDirVars()
		if err != nil {
			return err
		}
		s, err := csvFlags.resolveSchema(libraryDirs)
		if err != nil {
			return err
		}

		mode := library.KeyInt
		if csvUseUUIDKey {
			mode = library.KeyUUID
		}
		logCollecting(csvUseUUIDKey)
		lib, err := library.Load(libraryDirs, dirVars, s, mode)
		if err != nil {
			return err
		}

		sheets := []export.Sheet{export.BuildFlat(lib, s)}
		if csvSplit {
			sheets = export.BuildSplit(lib, s)
		}

		outputDir := resolveOutputDir(csvOutputDir, libraryDirs)
		for i, sheet := range sheets {
			path := fileio.CSVPath(outputDir, sheet.Stem)
			if _, err := os.Stat(path); err == nil {
				ui.Infof("Overwriting existing CSV file '%s'.", ui.Path(path))
			} else {
				ui.Infof("Creating '%s'.", ui.Path(path))
			}
			if err := fileio.WriteCSV(path, sheet.Columns, sheet.Rows); err != nil {
				return err
			}
			if i == 0 {
				ui.Infof("Wrote %s to file.", countBooks(len(sheet.Rows)))
			}
		}

		if len(sheets) == 1 {
			ui.Infof("Finished writing CSV file.")
		} else {
			ui.Infof("Finished writing %d CSV files.", len(sheets))
		}
		return nil
	},
}

func init() {
	addLibraryFlags(csvCmd, &csvFlags)
	addOutputDirFlag(csvCmd, &csvOutputDir)
	csvCmd.Flags().BoolVar(&csvSplit, "split", false,
		"create multiple CSVs with cross-references to use with spreadsheet software")
	csvCmd.Flags().BoolVar(&csvUseUUIDKey, "use-uuid-key", false,
		"use UUID4 keys, otherwise use integers")
	rootCmd.AddCommand(csvCmd)
}
