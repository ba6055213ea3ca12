package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"offgascli/pkg/contracts/domain"
)

// Column places one field at a spreadsheet column.
type Column struct {
	Letter string
	Label  string
	value  func(i int) cell
}

// Table is a letter-addressed export of typed records. Columns not mapped by
// any field are written blank so the layout matches the workbook.
type Table struct {
	Name    string
	Rows    int
	Columns []Column
	// Seed, when set, supplies the header block.
	Seed *domain.SourceTable
}

// Width is the number of exported columns.
func (t *Table) Width() int {
	width := 0
	if t.Seed != nil {
		width = len(t.Seed.Columns)
	}
	for _, c := range t.Columns {
		if idx, err := columnIndex(c.Letter); err == nil {
			width = max(width, idx+1)
		}
	}
	return width
}

// Header returns the header block. Seed labels are kept where the seed has
// any; other mapped columns get their own label on the first header row.
func (t *Table) Header() [][]string {
	width := t.Width()
	rows := 1
	if t.Seed != nil && len(t.Seed.Header) > 0 {
		rows = len(t.Seed.Header)
	}

	out := make([][]string, rows)
	for r := range out {
		out[r] = make([]string, width)
	}

	if t.Seed != nil {
		for c := 0; c < width && c < len(t.Seed.Columns); c++ {
			for r, label := range t.Seed.HeaderColumn(c) {
				out[r][c] = label
			}
		}
	}

	for _, col := range t.Columns {
		idx, err := columnIndex(col.Letter)
		if err != nil || hasLabel(out, idx) {
			continue
		}
		out[0][idx] = col.Label
	}
	return out
}

func hasLabel(block [][]string, idx int) bool {
	for _, row := range block {
		if row[idx] != "" {
			return true
		}
	}
	return false
}

// Records returns the formatted data rows.
func (t *Table) Records() [][]string {
	width := t.Width()
	idx := t.indices()
	out := make([][]string, t.Rows)
	for i := range out {
		row := make([]string, width)
		for j, col := range t.Columns {
			if idx[j] >= 0 {
				row[idx[j]] = col.value(i).String()
			}
		}
		out[i] = row
	}
	return out
}

// Values returns the data rows for spreadsheet output.
func (t *Table) Values() [][]interface{} {
	width := t.Width()
	idx := t.indices()
	out := make([][]interface{}, t.Rows)
	for i := range out {
		row := make([]interface{}, width)
		for j, col := range t.Columns {
			if idx[j] >= 0 {
				row[idx[j]] = col.value(i).Any()
			}
		}
		out[i] = row
	}
	return out
}

func (t *Table) indices() []int {
	out := make([]int, len(t.Columns))
	for j, col := range t.Columns {
		idx, err := columnIndex(col.Letter)
		if err != nil {
			idx = -1
		}
		out[j] = idx
	}
	return out
}

func columnIndex(letter string) (int, error) {
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", letter, err)
	}
	return n - 1, nil
}

func col(letter, label string, value func(i int) cell) Column {
	return Column{Letter: letter, Label: label, value: value}
}
