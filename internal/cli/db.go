package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/database"
	"github.com/jeremyn/simple-ebook-manager/internal/fileio"
	"github.com/jeremyn/simple-ebook-manager/internal/library"
	"github.com/jeremyn/simple-ebook-manager/internal/ui"
)

var (
	dbFlags       libraryFlags
	dbOutputDir   string
	dbUserSQLPath string
	dbUseUUIDKey  bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Create a SQLite database from book metadata",
	Long: `Create a SQLite database from book metadata. An existing database file is
overwritten without asking for confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryDirs, err := dbFlags.resolveLibraryDirs()
		if err != nil {
			return err
		}
		dirVars, err := dbFlags.resolveDirVars()
		if err != nil {
			return err
		}
		s, err := dbFlags.resolveSchema(libraryDirs)
		if err != nil {
			return err
		}

		mode := library.KeyInt
		if dbUseUUIDKey {
			mode = library.KeyUUID
		}
		logCollecting(dbUseUUIDKey)
		lib, err := library.Load(libraryDirs, dirVars, s, mode)
		if err != nil {
			return err
		}

		outputDir := resolveOutputDir(dbOutputDir, libraryDirs)
		return database.Build(fileio.DBPath(outputDir), lib, s, database.Options{
			UseUUIDKey:  dbUseUUIDKey,
			UserSQLPath: dbUserSQLPath,
			Logf:        ui.Infof,
		})
	},
}

func init() {
	addLibraryFlags(dbCmd, &dbFlags)
	addOutputDirFlag(dbCmd, &dbOutputDir)
	dbCmd.Flags().StringVar(&dbUserSQLPath, "user-sql-file", "",
		"user SQL file to run after creating database")
	dbCmd.Flags().BoolVar(&dbUseUUIDKey, "use-uuid-key", false,
		"use UUID4 primary keys, otherwise use integers")
	rootCmd.AddCommand(dbCmd)
}
