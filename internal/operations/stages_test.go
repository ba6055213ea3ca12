package operations_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "offgascli/internal/errors"
	"offgascli/internal/operations"
	"offgascli/internal/operations/testutil"
	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

func pipelineOptions(dir string) operations.PipelineOptions {
	opts := operations.DefaultPipelineOptions()
	opts.Logger = discardLogger()
	opts.Clock = clockwork.NewFakeClockAt(t0)
	opts.Export = operations.ExportTargets{
		AveragedPath: filepath.Join(dir, "averaged.csv"),
		RunPath:      filepath.Join(dir, "run.csv"),
		SummaryPath:  filepath.Join(dir, "summary.json"),
		WorkbookPath: filepath.Join(dir, "run_out.xlsx"),
	}
	return opts
}

func runPipeline(t *testing.T, opts operations.PipelineOptions, req operations.RunRequest) (*operations.OperationState, error) {
	t.Helper()
	registry, err := operations.NewPipeline(opts)
	require.NoError(t, err)
	m := operations.NewManager(registry, nil, nil, discardLogger(), opts.Clock)
	return m.Execute(context.Background(), req)
}

func TestNewPipelineOrder(t *testing.T) {
	registry, err := operations.NewPipeline(operations.DefaultPipelineOptions())
	require.NoError(t, err)

	order, err := registry.GetDependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{
		operations.StepIDIngest,
		operations.StepIDAlign,
		operations.StepIDDerive,
		operations.StepIDSummarize,
		operations.StepIDExport,
	}, stepIDs(order))
}

func TestPipelineEndToEnd(t *testing.T) {
	const minutes = 10
	path := testutil.WriteRunWorkbook(t, testutil.RunStart, minutes)
	dir := t.TempDir()

	state, err := runPipeline(t, pipelineOptions(dir), operations.RunRequest{
		ID:       "run-e2e",
		Workbook: path,
		RunStart: testutil.RunStart,
	})
	require.NoError(t, err)

	for _, id := range []string{
		operations.StepIDIngest,
		operations.StepIDAlign,
		operations.StepIDDerive,
		operations.StepIDSummarize,
		operations.StepIDExport,
	} {
		testutil.AssertStageCompleted(t, state, id)
	}

	data := state.Data
	require.Len(t, data.Averaged, minutes+1)
	assert.True(t, testutil.RunStart.Equal(data.Averaged[0].Time), "first step %s", data.Averaged[0].Time)
	assert.Equal(t, 20.0, data.Averaged[0].Analyzer.Hydrogen.Float())

	grid, err := timegrid.NewDayGrid(testutil.RunStart)
	require.NoError(t, err)
	require.Len(t, data.Derived.Records, len(grid))
	// only the logged minutes join
	assert.Equal(t, len(grid)-(minutes+1), data.Derived.Stats.JoinMisses)

	first := data.Derived.Records[0]
	assert.True(t, first.Start.Equal(domain.Num(1)))
	assert.Equal(t, 0.0, first.ElapsedHours.Float())

	require.NotNil(t, data.Summary)
	assert.Equal(t, "run-e2e", data.Summary.RunID)
	assert.Len(t, data.Summary.Phases, 2)

	require.Len(t, data.Written, 4)
	for _, p := range data.Written {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	var decoded domain.Summary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-e2e", decoded.RunID)

	wb, err := excelize.OpenFile(filepath.Join(dir, "run_out.xlsx"))
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Run Data")

	assert.Equal(t, minutes+1, state.GetStage(operations.StepIDAlign).Metadata["steps"])
}

func TestPipelineMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "BlueVis Raw Data"))
	require.NoError(t, f.SetCellValue("BlueVis Raw Data", "A1", "BlueVis export"))
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	state, err := runPipeline(t, pipelineOptions(t.TempDir()), operations.RunRequest{
		ID:       "run-missing",
		Workbook: path,
		RunStart: testutil.RunStart,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSheetNotFound)

	testutil.AssertStageFailed(t, state, operations.StepIDIngest, "Solaris Data")
	testutil.AssertStageSkipped(t, state, operations.StepIDAlign)
	testutil.AssertStageSkipped(t, state, operations.StepIDExport)
}

func TestPipelineValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     operations.RunRequest
		step    string
		message string
	}{
		{"no workbook", operations.RunRequest{RunStart: testutil.RunStart}, operations.StepIDIngest, "workbook path is required"},
		{"no run start", operations.RunRequest{}, operations.StepIDDerive, "run start is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if tt.step != operations.StepIDIngest {
				req.Workbook = testutil.WriteRunWorkbook(t, testutil.RunStart, 2)
			}

			state, err := runPipeline(t, pipelineOptions(t.TempDir()), req)
			require.Error(t, err)
			assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
			testutil.AssertStageFailed(t, state, tt.step, tt.message)
		})
	}
}

func TestExportRequiresTargets(t *testing.T) {
	opts := pipelineOptions(t.TempDir())
	opts.Export = operations.ExportTargets{}

	state, err := runPipeline(t, opts, operations.RunRequest{
		Workbook: testutil.WriteRunWorkbook(t, testutil.RunStart, 2),
		RunStart: testutil.RunStart,
	})
	require.Error(t, err)
	testutil.AssertStageCompleted(t, state, operations.StepIDSummarize)
	testutil.AssertStageFailed(t, state, operations.StepIDExport, "no export targets configured")
}
