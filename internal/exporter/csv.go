package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"quizreport/pkg/contracts/domain"
)

// utf8BOM helps spreadsheet tools recognise UTF-8 accents in class names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// TableOptions converts a consolidated table into CSV headers and records
// in column order, with a BOM prefix.
func TableOptions(table *domain.ConsolidatedTable) WriteOptions {
	records := make([][]string, table.Len())
	for i := range table.Rows {
		values := table.Values(i)
		record := make([]string, len(values))
		for j, v := range values {
			record[j] = formatValue(v)
		}
		records[i] = record
	}
	return WriteOptions{
		Headers:   table.Columns(),
		Records:   records,
		BOMPrefix: true,
	}
}

// Write writes the options' headers and records to out
func (w *CSVWriter) Write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes the consolidated table to out
func (w *CSVWriter) WriteTable(out io.Writer, table *domain.ConsolidatedTable) error {
	return w.Write(out, TableOptions(table))
}
