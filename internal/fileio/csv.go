package fileio

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/natefinch/atomic"
)

// WriteCSV writes a header row plus data rows to path atomically. CRLF
// row endings are used, matching what spreadsheet software expects.
func WriteCSV(path string, columns []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(columns); err != nil {
		return fmt.Errorf("cannot encode CSV for '%s': %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("cannot encode CSV for '%s': %w", path, err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	return nil
}
