package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"offgascli/pkg/contracts/domain"
)

// Sheet names of the exported workbook.
const (
	AveragedSheet = "AveragedData"
	RunSheet      = "Run Data"
	SummarySheet  = "Summary"
)

// WriteXLSX writes the averaged grid, the run table and the summary to one
// workbook. Rows are streamed.
func WriteXLSX(filePath string, averaged, run *Table, s *domain.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), AveragedSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, AveragedSheet, averaged); err != nil {
		return err
	}
	if _, err := f.NewSheet(RunSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeSheet(f, RunSheet, run); err != nil {
		return err
	}
	if s != nil {
		if _, err := f.NewSheet(SummarySheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		if err := writeSheet(f, SummarySheet, SummaryRows(s)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sheet, err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	row := 1
	for _, labels := range t.Header() {
		values := make([]interface{}, len(labels))
		for i, l := range labels {
			values[i] = l
		}
		if err := setRow(sw, row, values); err != nil {
			return err
		}
		row++
	}

	for _, values := range t.Values() {
		for i, v := range values {
			if _, ok := v.(time.Time); ok {
				values[i] = excelize.Cell{StyleID: dateStyle, Value: v}
			}
		}
		if err := setRow(sw, row, values); err != nil {
			return err
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", sheet, err)
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// SummaryRows flattens the summary into a phase/section/metric table.
func SummaryRows(s *domain.Summary) *Table {
	type line struct {
		phase, section, name, unit string
		value                      domain.Value
	}
	var lines []line
	add := func(phase, section string, ms ...domain.Metric) {
		for _, m := range ms {
			lines = append(lines, line{phase, section, m.Name, m.Unit, domain.FromPtr(m.Value)})
		}
	}
	for _, p := range s.Phases {
		add(p.Name, "elapsed", domain.Metric{Name: "Start", Value: &p.Elapsed.Start, Unit: p.Elapsed.Unit},
			domain.Metric{Name: "End", Value: &p.Elapsed.End, Unit: p.Elapsed.Unit})
		if p.Stabilization != nil {
			add(p.Name, "stabilization", *p.Stabilization)
		}
		add(p.Name, "totals", p.Totals...)
		add(p.Name, "maximums", p.Maximums...)
		add(p.Name, "averages", p.Averages...)
	}

	l := func(i int) line { return lines[i] }
	return &Table{
		Name: "summary",
		Rows: len(lines),
		Columns: []Column{
			col("A", "Phase", func(i int) cell { return textCell(l(i).phase) }),
			col("B", "Section", func(i int) cell { return textCell(l(i).section) }),
			col("C", "Metric", func(i int) cell { return textCell(l(i).name) }),
			col("D", "Value", func(i int) cell { return num(l(i).value) }),
			col("E", "Unit", func(i int) cell { return textCell(l(i).unit) }),
		},
	}
}
