package workbook

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "offgascli/internal/errors"
	"offgascli/pkg/contracts/domain"
)

// Sheet describes one sheet of the workbook.
type Sheet struct {
	Name        string   `yaml:"name" validate:"required"`
	HeaderRows  int      `yaml:"header_rows" validate:"gte=0"`
	TimeColumns []string `yaml:"time_columns"`
}

// Layout lists the sheets the pipeline consumes.
type Layout struct {
	Analyzer    Sheet `yaml:"analyzer"`
	Controller  Sheet `yaml:"controller"`
	Averaged    Sheet `yaml:"averaged"`
	Run         Sheet `yaml:"run"`
	Calibration Sheet `yaml:"calibration"`
}

// DefaultLayout matches the sheet names and header heights of the workbook.
func DefaultLayout() Layout {
	return Layout{
		Analyzer:    Sheet{Name: "BlueVis Raw Data", HeaderRows: 6, TimeColumns: []string{"A", "B"}},
		Controller:  Sheet{Name: "Solaris Data", HeaderRows: 3, TimeColumns: []string{"A"}},
		Averaged:    Sheet{Name: "AveragedData", HeaderRows: 2, TimeColumns: []string{"B", "C"}},
		Run:         Sheet{Name: "Run Data", HeaderRows: 3, TimeColumns: []string{"B"}},
		Calibration: Sheet{Name: "Calibration Data", HeaderRows: 9},
	}
}

// Tables are the parsed sheets.
type Tables struct {
	Analyzer    *domain.SourceTable
	Controller  *domain.SourceTable
	Averaged    *domain.SourceTable
	Run         *domain.SourceTable
	Calibration *domain.SourceTable
}

// Workbook is an open workbook file.
type Workbook struct {
	file   *excelize.File
	path   string
	logger *slog.Logger
}

// Open opens the workbook at path.
func Open(path string, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	return &Workbook{file: f, path: path, logger: logger}, nil
}

// Close releases the file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// ReadAll reads every sheet of the layout.
func (w *Workbook) ReadAll(layout Layout) (*Tables, error) {
	var t Tables
	for _, s := range []struct {
		sheet Sheet
		dst   **domain.SourceTable
	}{
		{layout.Analyzer, &t.Analyzer},
		{layout.Controller, &t.Controller},
		{layout.Averaged, &t.Averaged},
		{layout.Run, &t.Run},
		{layout.Calibration, &t.Calibration},
	} {
		tbl, err := w.ReadSheet(s.sheet)
		if err != nil {
			return nil, err
		}
		*s.dst = tbl
	}
	return &t, nil
}

// ReadSheet parses one sheet into a source table.
func (w *Workbook) ReadSheet(sheet Sheet) (*domain.SourceTable, error) {
	idx, err := w.file.GetSheetIndex(sheet.Name)
	if err != nil || idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet.Name), apperrors.ErrSheetNotFound)
	}

	rows, err := w.file.GetRows(sheet.Name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet.Name), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheet.Name), apperrors.ErrEmptyTable)
	}

	tbl, err := Build(sheet, rows)
	if err != nil {
		return nil, err
	}

	w.logger.Info("sheet loaded",
		slog.String("sheet", sheet.Name),
		slog.Int("header_rows", len(tbl.Header)),
		slog.Int("data_rows", tbl.Len()),
		slog.Int("columns", len(tbl.Columns)))

	return tbl, nil
}

// Build turns raw cell strings into a table. Exported for callers that already
// hold rows, such as tests and CSV imports.
func Build(sheet Sheet, rows [][]string) (*domain.SourceTable, error) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	columns, err := ColumnNames(width)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to name columns", err)
	}

	tbl := &domain.SourceTable{Name: sheet.Name, Columns: columns}
	if len(rows) > 0 {
		tbl.Title = pad(rows[0], width)
	}

	headerEnd := min(len(rows), 1+sheet.HeaderRows)
	for _, r := range rows[min(1, len(rows)):headerEnd] {
		tbl.Header = append(tbl.Header, pad(r, width))
	}

	isTime := make([]bool, width)
	for _, letter := range sheet.TimeColumns {
		if i, err := tbl.ColumnIndex(letter); err == nil {
			isTime[i] = true
		}
	}

	for _, r := range rows[headerEnd:] {
		cells := make([]domain.Cell, width)
		for c := 0; c < width; c++ {
			var raw string
			if c < len(r) {
				raw = r[c]
			}
			cells[c] = ParseCell(raw, isTime[c])
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl, nil
}

// ColumnNames returns A, B, ..., Z, AA, ... for n columns.
func ColumnNames(n int) ([]string, error) {
	out := make([]string, n)
	for i := range out {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}

// timeLayouts are tried for timestamp cells stored as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	time.RFC3339,
}

// ParseCell detects numbers, date serials and timestamps. Anything else is
// kept as text with a blank value.
func ParseCell(raw string, timeColumn bool) domain.Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Cell{Value: domain.Blank()}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		if timeColumn {
			t, err := excelize.ExcelDateToTime(f, false)
			if err == nil {
				return domain.Cell{Time: t.Round(time.Millisecond), Value: domain.Num(f), Text: s}
			}
		}
		return domain.Cell{Value: domain.Num(f), Text: s}
	}

	if timeColumn {
		if t, ok := ParseTime(s); ok {
			return domain.Cell{Time: t, Value: domain.Blank(), Text: s}
		}
	}
	return domain.Cell{Value: domain.Blank(), Text: s}
}

// ParseTime tries the known timestamp layouts.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func pad(r []string, width int) []string {
	out := make([]string, width)
	copy(out, r)
	return out
}
