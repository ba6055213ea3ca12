package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"offgascli/internal/align"
)

// RunStart is the start of the reference run
var RunStart = time.Date(2023, 10, 25, 13, 47, 0, 0, time.UTC)

type sheetWriter struct {
	t *testing.T
	f *excelize.File
}

func (w sheetWriter) row(sheet string, row int, values ...interface{}) {
	w.t.Helper()
	for c, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		require.NoError(w.t, err)
		require.NoError(w.t, w.f.SetCellValue(sheet, cell, v))
	}
}

func (w sheetWriter) cell(sheet, cell string, v interface{}) {
	w.t.Helper()
	require.NoError(w.t, w.f.SetCellValue(sheet, cell, v))
}

// WriteRunWorkbook writes a workbook with every sheet the pipeline reads.
// The analyzer logs every 5 seconds and the controller every 10 seconds for
// the given number of minutes after start.
func WriteRunWorkbook(t *testing.T, start time.Time, minutes int) string {
	t.Helper()

	f := excelize.NewFile()
	w := sheetWriter{t: t, f: f}
	sheets := []string{"BlueVis Raw Data", "Solaris Data", "AveragedData", "Run Data", "Calibration Data"}
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheets[0]))
	for _, s := range sheets[1:] {
		_, err := f.NewSheet(s)
		require.NoError(t, err)
	}

	// analyzer: title, 6 header rows, then data
	w.row(sheets[0], 1, "BlueVis export")
	w.row(sheets[0], 2, "Clock", "Time", "Moisture", "Sample Flow", "Pressure", "Temperature", "O2", "N2", "", "", "", "CO2", "H2")
	row := 8
	for s := 0; s <= minutes*60; s += 5 {
		at := start.Add(time.Duration(s) * time.Second)
		w.row(sheets[0], row, at.Add(align.DefaultAnalyzerClockOffset), at,
			1.2, 0.5, 101.3, 25.0, 15.0, 60.0, nil, nil, nil, 5.0, 20.0)
		row++
	}

	// controller: title, 3 header rows, then data in the channel columns
	w.row(sheets[1], 1, "Solaris export")
	w.row(sheets[1], 2, "Time")
	row = 5
	for s := 0; s <= minutes*60; s += 10 {
		values := make([]interface{}, 33)
		values[0] = start.Add(time.Duration(s) * time.Second)
		for c := 4; c < len(values); c++ {
			values[c] = float64(c)
		}
		values[10] = 800.0 // K agitation
		values[12] = 40.0  // M dissolved oxygen
		values[8] = 12.0   // I optical density
		w.row(sheets[1], row, values...)
		row++
	}

	// seed headers of the derived sheets
	w.row(sheets[2], 1, "Averaged")
	w.row(sheets[2], 2, "Marker", "Clock", "Time")
	w.row(sheets[3], 1, "Run")
	w.row(sheets[3], 2, "Start", "Time", "EFT")

	// calibration: side table in rows 3..6, carbon dioxide thresholds in I14..I16
	cal := sheets[4]
	w.row(cal, 1, "Calibration")
	side := [][]float64{
		// H, I, J, K, L, M
		{0.01, 0, 0.05, 0.001, 0.004, 0.002},
		{0.10, 0, 0.15, 0.002, 0.003, 0.003},
		{0.50, 0, 0.25, 0.003, 0.002, 0.004},
		{0.90, 0, 0.95, 0.004, 0.001, 0.005},
	}
	for i, r := range side {
		excelRow := 3 + i
		w.cell(cal, fmt.Sprintf("B%d", excelRow), "point")
		for j, letter := range []string{"H", "I", "J", "K", "L", "M"} {
			if letter == "I" {
				continue
			}
			w.cell(cal, fmt.Sprintf("%s%d", letter, excelRow), r[j])
		}
	}
	w.cell(cal, "A11", "threshold")
	for i, th := range []float64{0.9, 0.8, 0.7, 0.30, 0.20, 0.10} {
		w.cell(cal, fmt.Sprintf("I%d", 11+i), th)
	}

	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}
