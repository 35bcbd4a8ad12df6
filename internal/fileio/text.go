package fileio

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// Newline is a user-selectable line ending convention for output files.
type Newline string

const (
	NewlinePOSIX   Newline = "\n"
	NewlineWindows Newline = "\r\n"
)

// ParseNewline maps a flag value ("posix" or "windows") to a Newline.
func ParseNewline(s string) (Newline, error) {
	switch strings.ToLower(s) {
	case "posix":
		return NewlinePOSIX, nil
	case "windows":
		return NewlineWindows, nil
	}
	return "", fmt.Errorf("invalid newline '%s', must be 'posix' or 'windows'", s)
}

// DetectNewline inspects path and reports which newline convention it uses.
// A file that mixes conventions or has no line ending at all fails.
func DetectNewline(path string) (Newline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read '%s': %w", path, err)
	}

	crlf := bytes.Count(data, []byte("\r\n"))
	lf := bytes.Count(data, []byte("\n"))
	switch {
	case crlf > 0 && crlf == lf:
		return NewlineWindows, nil
	case crlf == 0 && lf > 0:
		return NewlinePOSIX, nil
	}
	return "", fmt.Errorf("newline not specified and autodetect failed on '%s'", path)
}

// ReadText reads path as UTF-8 text, normalizing any Windows line endings.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read '%s': %w", path, err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// WriteText writes text to path atomically, with exactly one trailing line
// ending and every line ending converted to the requested convention.
func WriteText(path, text string, newline Newline) error {
	text = strings.TrimRight(text, "\n") + "\n"
	if newline == NewlineWindows {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	return nil
}

// SameContents reports whether two files have byte-identical contents.
func SameContents(path1, path2 string) (bool, error) {
	data1, err := os.ReadFile(path1)
	if err != nil {
		return false, fmt.Errorf("cannot read '%s': %w", path1, err)
	}
	data2, err := os.ReadFile(path2)
	if err != nil {
		return false, fmt.Errorf("cannot read '%s': %w", path2, err)
	}
	return bytes.Equal(data1, data2), nil
}
