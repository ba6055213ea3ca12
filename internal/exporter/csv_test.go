package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF")))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
		wantBOM bool
	}{
		{
			name: "header block and records",
			options: WriteOptions{
				HeaderRows: [][]string{{"Time", "H2"}, {"", "%"}},
				Records:    [][]string{{"2023-10-25 13:47:00", "1.5"}},
			},
			want: [][]string{{"Time", "H2"}, {"", "%"}, {"2023-10-25 13:47:00", "1.5"}},
		},
		{
			name: "with BOM",
			options: WriteOptions{
				HeaderRows: [][]string{{"a"}},
				BOMPrefix:  true,
			},
			want:    [][]string{{"a"}},
			wantBOM: true,
		},
		{
			name: "quoted fields",
			options: WriteOptions{
				Records: [][]string{{"a,b", `say "hi"`}},
			},
			want: [][]string{{"a,b", `say "hi"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			w := NewCSVWriter(nil)
			require.NoError(t, w.WriteCSV(path, tt.options))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, strings.HasPrefix(string(data), "\uFEFF"))
			assert.Equal(t, tt.want, readCSV(t, path))
		})
	}
}

func TestWriteCSVTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"1"}, {"2"}, {"3"}}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"4"}}}))
	assert.Equal(t, [][]string{{"4"}}, readCSV(t, path))
}

func TestWriteTableWithSeedHeader(t *testing.T) {
	seed := &domain.SourceTable{
		Name:    "Run Data",
		Columns: []string{"A", "B", "C"},
		Header: [][]string{
			{"Run", "Date/Time", "EFT"},
			{"", "", "hrs"},
			{"", "", ""},
		},
	}
	records := runRecords(2)

	path := filepath.Join(t.TempDir(), "run_data.csv")
	require.NoError(t, NewCSVWriter(nil).WriteTable(path, RunTable(records, seed), false))

	rows := readCSV(t, path)
	require.Len(t, rows, 5)
	assert.Equal(t, "Date/Time", rows[0][1])
	assert.Equal(t, "hrs", rows[1][2])
	// columns past the seed fall back to their own label
	assert.Equal(t, "H2 Fraction", rows[0][11])
	assert.Equal(t, "", rows[1][11])

	assert.Equal(t, "1", rows[3][0])
	assert.Equal(t, "2023-10-25 13:47:00", rows[3][1])
	assert.Equal(t, "", rows[4][0])
	assert.Equal(t, "2023-10-25 13:48:00", rows[4][1])
}
