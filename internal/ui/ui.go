// Package ui prints progress and error messages for the CLI.
//
// Output stays plain line-oriented text so it pipes cleanly; the only
// decoration is an accent on file paths, applied when stdout is a
// terminal.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	bold   = lipgloss.NewStyle().Bold(true)

	stdoutIsTerminal = isatty.IsTerminal(os.Stdout.Fd())
	stderrIsTerminal = isatty.IsTerminal(os.Stderr.Fd())
)

// Infof prints one progress line to stdout.
func Infof(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Errorf prints one error line to stderr.
func Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if stderrIsTerminal {
		msg = bold.Render("ERROR:") + " " + msg
	} else {
		msg = "ERROR: " + msg
	}
	fmt.Fprintln(os.Stderr, msg)
}

// Path returns path with the accent style when stdout is a terminal.
func Path(path string) string {
	if stdoutIsTerminal {
		return accent.Render(path)
	}
	return path
}
