package calibration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"offgascli/pkg/contracts/domain"
)

var ErrMalformedTable = errors.New("malformed calibration table")

// Layout locates the breakpoints inside the calibration sheet. Side rows sit in
// the header block; carbon dioxide thresholds sit in the data rows.
type Layout struct {
	SideRows  []int
	SideKey   string
	SideFirst string
	SideLast  string

	HydrogenThreshold string
	HydrogenOffset    string
	OxygenThreshold   string
	OxygenOffset      string

	CarbonDioxideColumn     string
	CarbonDioxideDataRows   []int
	CarbonDioxideOffsetCol  string
	CarbonDioxideOffsetRows []int
}

// DefaultLayout matches the calibration sheet of the fermentation workbook.
func DefaultLayout() Layout {
	return Layout{
		SideRows:  []int{1, 2, 3, 4},
		SideKey:   "B",
		SideFirst: "B",
		SideLast:  "M",

		HydrogenThreshold: "H",
		HydrogenOffset:    "K",
		OxygenThreshold:   "J",
		OxygenOffset:      "M",

		CarbonDioxideColumn:   "I",
		CarbonDioxideDataRows: []int{5, 4, 3},
		// offsets per bracket: below, then between each threshold, then above
		CarbonDioxideOffsetCol:  "L",
		CarbonDioxideOffsetRows: []int{2, 3, 2, 1},
	}
}

// SideRow is one row of the reference side table, keyed by its first column.
type SideRow struct {
	Key    string
	Values map[string]float64
}

// Table holds the per-channel breakpoints.
type Table struct {
	Side          []SideRow
	CarbonDioxide Schedule
	Hydrogen      Lookup
	Oxygen        Lookup
}

// LoadTable reads the breakpoints out of the calibration sheet.
func LoadTable(sheet *domain.SourceTable, layout Layout) (Table, error) {
	side, err := sideRows(sheet, layout)
	if err != nil {
		return Table{}, err
	}

	var t Table
	t.Side = side
	for _, r := range side {
		t.Hydrogen.Thresholds = append(t.Hydrogen.Thresholds, value(r, layout.HydrogenThreshold))
		t.Hydrogen.Offsets = append(t.Hydrogen.Offsets, value(r, layout.HydrogenOffset))
		t.Oxygen.Thresholds = append(t.Oxygen.Thresholds, value(r, layout.OxygenThreshold))
		t.Oxygen.Offsets = append(t.Oxygen.Offsets, value(r, layout.OxygenOffset))
	}

	thresholds := make([]float64, 0, len(layout.CarbonDioxideDataRows))
	for _, row := range layout.CarbonDioxideDataRows {
		c := sheet.Cell(row, layout.CarbonDioxideColumn)
		if !c.Value.IsDefined() {
			return Table{}, fmt.Errorf("%w: carbon dioxide threshold %s%d is empty", ErrMalformedTable, layout.CarbonDioxideColumn, row)
		}
		thresholds = append(thresholds, c.Value.Float())
	}

	offsets := make([]float64, 0, len(layout.CarbonDioxideOffsetRows))
	for _, row := range layout.CarbonDioxideOffsetRows {
		if row < 0 || row >= len(side) {
			return Table{}, fmt.Errorf("%w: side row %d out of range", ErrMalformedTable, row)
		}
		offsets = append(offsets, value(side[row], layout.CarbonDioxideOffsetCol))
	}

	t.CarbonDioxide, err = NewBracketSchedule(thresholds, offsets)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	return t, nil
}

func sideRows(sheet *domain.SourceTable, layout Layout) ([]SideRow, error) {
	first, err := sheet.ColumnIndex(layout.SideFirst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	last, err := sheet.ColumnIndex(layout.SideLast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	rows := make([]SideRow, 0, len(layout.SideRows))
	for _, hr := range layout.SideRows {
		if hr < 0 || hr >= len(sheet.Header) {
			return nil, fmt.Errorf("%w: header row %d missing", ErrMalformedTable, hr)
		}
		labels := sheet.Header[hr]
		r := SideRow{Values: make(map[string]float64)}
		for c := first; c <= last && c < len(labels); c++ {
			letter := sheet.Columns[c]
			if letter == layout.SideKey {
				r.Key = labels[c]
				continue
			}
			r.Values[letter] = parseFloat(labels[c])
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// value returns NaN for columns that were empty or not numeric.
func value(r SideRow, letter string) float64 {
	v, ok := r.Values[letter]
	if !ok {
		return domain.NaN().Float()
	}
	return v
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return domain.NaN().Float()
	}
	return f
}
