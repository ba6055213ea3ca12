package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "offgas.xlsx")

	averaged := AveragedTable(averagedBuckets(3), nil)
	run := RunTable(runRecords(3), nil)
	require.NoError(t, WriteXLSX(path, averaged, run, sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{AveragedSheet, RunSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(AveragedSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Marker", rows[0][0])
	assert.Equal(t, "TAG %", rows[0][45])
	assert.Equal(t, "1.25", rows[1][10])

	runRows, err := f.GetRows(RunSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, runRows, 4)
	assert.Equal(t, "RQ", runRows[0][49])
	assert.Equal(t, "-5", runRows[1][43])

	// timestamps are real dates, not text
	cell, err := f.GetCellValue(RunSheet, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.NotEqual(t, "2023-10-25 13:47:00", cell)
	assert.NotEmpty(t, cell)

	summaryRows, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Phase", "Section", "Metric", "Value", "Unit"}, summaryRows[0])
	assert.Contains(t, summaryRows, []string{"Growth", "stabilization", "Stabilization Time", "1.5", "hrs"})
}

func TestWriteXLSXWithoutSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offgas.xlsx")
	require.NoError(t, WriteXLSX(path, AveragedTable(nil, nil), RunTable(nil, nil), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{AveragedSheet, RunSheet}, f.GetSheetList())
}

func TestSummaryRows(t *testing.T) {
	table := SummaryRows(sampleSummary())
	records := table.Records()

	// Growth: 2 elapsed + 1 stabilization + 2 totals + 1 max + 1 average.
	// Production: 2 elapsed.
	require.Len(t, records, 9)
	assert.Equal(t, []string{"Growth", "elapsed", "Start", "0", "hrs"}, records[0])
	assert.Equal(t, []string{"Growth", "totals", "Total TAG Produced", "NaN", "g"}, records[4])
	assert.Equal(t, []string{"Production", "elapsed", "End", "96", "hrs"}, records[8])
}
