package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/internal/infrastructure"
	"offgascli/internal/operations/testutil"
)

// writeConfig writes a config that keeps every artifact inside dir
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	path := filepath.Join(dir, "offgas.yaml")
	content := fmt.Sprintf(`output:
  directory: %s
logging:
  output: file
  file_path: %s
metrics:
  enabled: false
`, filepath.Join(dir, "out"), filepath.Join(dir, "offgas.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	workbook := testutil.WriteRunWorkbook(t, testutil.RunStart, 10)

	var out, errOut bytes.Buffer
	code := Execute(context.Background(),
		[]string{"--config", cfg, "process", "--xlsx", workbook, "2023-10-25 13:47"}, &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())

	assert.Contains(t, out.String(), "Growth")
	assert.Contains(t, out.String(), "Production")
	assert.Contains(t, out.String(), "wrote ")
	for _, name := range []string{"averaged_data.csv", "run_data.csv", "summary.json", "offgas.xlsx"} {
		assert.FileExists(t, filepath.Join(dir, "out", name))
	}
}

func TestSummaryCommandWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	workbook := testutil.WriteRunWorkbook(t, testutil.RunStart, 5)

	var out, errOut bytes.Buffer
	code := Execute(context.Background(),
		[]string{"-c", cfg, "summary", workbook, "2023-10-25 13:47"}, &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())

	assert.Contains(t, out.String(), "Growth")
	assert.NotContains(t, out.String(), "wrote ")
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessFailuresAreLogged(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	workbook := testutil.WriteRunWorkbook(t, testutil.RunStart, 1)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad run start", []string{"-c", cfg, "process", workbook, "yesterday"}, "invalid run start"},
		{"missing workbook", []string{"-c", cfg, "process", filepath.Join(dir, "nope.xlsx"), "2023-10-25 13:47"}, "workbook not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := Execute(context.Background(), tt.args, &out, &errOut)
			assert.Equal(t, ExitFailure, code)
			assert.Contains(t, errOut.String(), tt.wantErr)
		})
	}

	logData, err := os.ReadFile(filepath.Join(dir, "offgas.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "invalid run start")
	assert.Contains(t, string(logData), "workbook not found")
}
