// Package workbook reads the fermentation workbook into rectangular source
// tables. The first sheet row is a title row, followed by a header block of a
// per-sheet height and then one record per row. Columns are addressed by their
// spreadsheet letters.
package workbook
