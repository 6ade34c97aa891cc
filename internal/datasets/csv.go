package datasets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCSV writes a header row followed by the data rows.
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("datasets: writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("datasets: writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("datasets: flushing csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes a CSV table to a file, creating parent directories.
func WriteCSVFile(path string, headers []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("datasets: creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("datasets: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, headers, rows); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("datasets: closing %s: %w", path, err)
	}
	return nil
}

// DashboardCSVRows renders dashboard rows for WriteCSV.
func DashboardCSVRows(rows []DashboardRow) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.csv()
	}
	return out
}
