package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jeremyn/simple-ebook-manager/internal/library"
)

var (
	customFlags   libraryFlags
	customUserCmd string
)

var customCmd = &cobra.Command{
	Use:   "custom [-- extra args...]",
	Short: "Run a user command over the library",
	Long: `Run a user-supplied command over the library. The command is invoked once
with every book directory as an argument, followed by any extra arguments
given after '--'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryDirs, err := customFlags.resolveLibraryDirs()
		if err != nil {
			return err
		}
		bookDirs, err := library.BookDirs(libraryDirs)
		if err != nil {
			return err
		}

		userCmd := exec.Command(customUserCmd, append(bookDirs, args...)...)
		userCmd.Stdout = os.Stdout
		userCmd.Stderr = os.Stderr
		if err := userCmd.Run(); err != nil {
			return fmt.Errorf("user command '%s' failed: %w", customUserCmd, err)
		}
		return nil
	},
}

func init() {
	addLibraryFlags(customCmd, &customFlags)
	customCmd.Flags().StringVar(&customUserCmd, "user-cmd", "",
		"user command to run with every book directory as an argument")
	customCmd.MarkFlagRequired("user-cmd")
	rootCmd.AddCommand(customCmd)
}
