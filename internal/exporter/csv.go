package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	// HeaderRows are written first, one CSV line each.
	HeaderRows [][]string
	Records    [][]string
	BOMPrefix  bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("writing csv file",
		slog.String("file_path", filePath),
		slog.Int("header_rows", len(options.HeaderRows)),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(options.HeaderRows); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteTable writes a table with its header block.
func (w *CSVWriter) WriteTable(filePath string, t *Table, bom bool) error {
	if err := w.WriteCSV(filePath, WriteOptions{
		HeaderRows: t.Header(),
		Records:    t.Records(),
		BOMPrefix:  bom,
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.Name, err)
	}
	w.logger.Info("table exported",
		slog.String("table", t.Name),
		slog.String("file_path", filePath),
		slog.Int("rows", t.Rows))
	return nil
}
