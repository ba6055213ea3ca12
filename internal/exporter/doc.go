// Package exporter writes the averaged grid, the run table and the summary.
//
// This package contains these components:
//
// CSVWriter: core CSV writing with a multi-row header block and an optional
// UTF-8 BOM for Excel compatibility.
//
// Table: a letter-addressed view over typed records. AveragedTable and
// RunTable place every field at the spreadsheet column it has in the
// workbook and restore the header labels of the seed sheet.
//
// XLSXWriter and SummaryTable: workbook and console renderings.
//
// Bundle: writes every artifact of a run concurrently.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteTable("output/run_data.csv", exporter.RunTable(records, seed), true)
package exporter
