package domain

import (
	"fmt"
	"time"
)

// Cell is one spreadsheet cell after type detection. Time is set for date cells,
// Text keeps the raw string for labels.
type Cell struct {
	Value Value
	Time  time.Time
	Text  string
}

// IsTime reports whether the cell held a date or datetime.
func (c Cell) IsTime() bool { return !c.Time.IsZero() }

// SourceTable is a rectangular per-source table: a header block followed by data
// rows, addressed by spreadsheet column letters.
type SourceTable struct {
	Name    string     `json:"name"`
	Title   []string   `json:"title"`
	Header  [][]string `json:"header"`
	Columns []string   `json:"columns"`
	Rows    [][]Cell   `json:"-"`
}

// Len returns the number of data rows.
func (t *SourceTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a letter column.
func (t *SourceTable) ColumnIndex(letter string) (int, error) {
	for i, c := range t.Columns {
		if c == letter {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %s not found in %s", letter, t.Name)
}

// Cell returns the cell at row and letter column; out of range yields an empty cell.
func (t *SourceTable) Cell(row int, letter string) Cell {
	idx, err := t.ColumnIndex(letter)
	if err != nil || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return Cell{}
	}
	return t.Rows[row][idx]
}

// Times extracts a timestamp column. Non-date cells become the zero time.
func (t *SourceTable) Times(letter string) ([]time.Time, error) {
	idx, err := t.ColumnIndex(letter)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx].Time
		}
	}
	return out, nil
}

// Values extracts a numeric column. Missing cells are blank.
func (t *SourceTable) Values(letter string) ([]Value, error) {
	idx, err := t.ColumnIndex(letter)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx].Value
		}
	}
	return out, nil
}

// HeaderColumn returns the header labels stacked above a column, top to bottom.
func (t *SourceTable) HeaderColumn(idx int) []string {
	out := make([]string, len(t.Header))
	for i, row := range t.Header {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
