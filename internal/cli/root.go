// Package cli implements the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/config"
	"github.com/jeremyn/simple-ebook-manager/internal/ui"
)

var (
	configPathFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sem",
	Short: "Manage a library of ebook metadata directories",
	Long: `sem manages a library of books, where each book is a directory holding a
metadata.json record, the book files themselves, and optional text files
for long fields. The collection can be exported as CSV for spreadsheet
software or as a SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.ResolvePath(configPathFlag))
		return err
	},
}

// Execute runs the CLI. User-data problems are printed as a single ERROR
// line; the non-zero exit is mapped in main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.Errorf("%v.", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to config file (defaults to ~/.config/sem/config.toml)")
}
