package operations_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/internal/operations"
	"offgascli/internal/operations/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(t *testing.T, cfg *operations.Config, steps ...operations.Step) *operations.Manager {
	t.Helper()
	m := operations.NewManager(nil, cfg, nil, discardLogger(), clockwork.NewFakeClockAt(t0))
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m
}

func TestManagerExecutesInDependencyOrder(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	m := newManager(t, nil,
		testutil.CreateRecordingStage("summarize", &order, &mu, "derive"),
		testutil.CreateRecordingStage("derive", &order, &mu, "ingest"),
		testutil.CreateRecordingStage("ingest", &order, &mu),
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ingest", "derive", "summarize"}, order)
	testutil.AssertOperationStatus(t, state, operations.OperationStatusCompleted)
	for _, id := range order {
		testutil.AssertStageCompleted(t, state, id)
	}

	got, err := m.GetOperation("run-1")
	require.NoError(t, err)
	assert.Same(t, state, got)
	assert.Same(t, state, m.Last())
	require.Len(t, m.ListOperations(), 1)
}

func TestManagerGeneratesRunID(t *testing.T) {
	m := newManager(t, nil, testutil.CreateSuccessfulStage("a"))

	state, err := m.Execute(context.Background(), operations.RunRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, state.ID, state.Request.ID)
}

func TestManagerFailureSkipsRemaining(t *testing.T) {
	// report only needs ingest but is ordered after align
	report := testutil.CreateSuccessfulStage("report", "ingest")
	m := newManager(t, nil,
		testutil.CreateSuccessfulStage("ingest"),
		testutil.CreateFailingStage("align", "no timestamps", "ingest"),
		testutil.CreateSuccessfulStage("derive", "align"),
		report,
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-2"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))

	testutil.AssertOperationStatus(t, state, operations.OperationStatusFailed)
	testutil.AssertStageCompleted(t, state, "ingest")
	testutil.AssertStageFailed(t, state, "align", "no timestamps")
	testutil.AssertStageSkipped(t, state, "derive")
	testutil.AssertStageSkipped(t, state, "report")
	assert.Zero(t, report.Calls())
	assert.Equal(t, "step align failed", state.GetStage("report").Message)
	assert.True(t, state.IsComplete())
}

func TestManagerContinueOnError(t *testing.T) {
	independent := testutil.CreateSuccessfulStage("independent")
	cfg := operations.NewConfig()
	cfg.ContinueOnError = true
	m := newManager(t, cfg,
		testutil.CreateFailingStage("align", "no timestamps"),
		testutil.CreateSuccessfulStage("derive", "align"),
		independent,
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no timestamps")

	testutil.AssertStageFailed(t, state, "align", "no timestamps")
	testutil.AssertStageSkipped(t, state, "derive")
	testutil.AssertStageCompleted(t, state, "independent")
	assert.Equal(t, 1, independent.Calls())
	assert.Contains(t, state.GetStage("derive").Message, "dependency align not completed")
}

func TestManagerValidationFailure(t *testing.T) {
	step := testutil.CreateSuccessfulStage("ingest")
	step.ValidateFunc = func(*operations.OperationState) error { return errors.New("workbook path is required") }
	m := newManager(t, nil, step)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-4"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	testutil.AssertStageFailed(t, state, "ingest", "workbook path is required")
	assert.Zero(t, step.Calls())
}

func TestManagerSkipRequest(t *testing.T) {
	m := newManager(t, nil,
		testutil.CreateSuccessfulStage("ingest"),
		testutil.CreateSuccessfulStage("summarize", "ingest"),
		testutil.CreateSuccessfulStage("export", "summarize"),
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-5", Skip: []string{"summarize"}})
	require.NoError(t, err)

	testutil.AssertOperationStatus(t, state, operations.OperationStatusCompleted)
	testutil.AssertStageCompleted(t, state, "ingest")
	testutil.AssertStageSkipped(t, state, "summarize")
	assert.Equal(t, "excluded by request", state.GetStage("summarize").Message)
	testutil.AssertStageSkipped(t, state, "export")
}

func TestManagerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := testutil.CreateSuccessfulStage("ingest")
	first.ExecuteFunc = func(context.Context, *operations.OperationState) error {
		cancel()
		return nil
	}
	second := testutil.CreateSuccessfulStage("align", "ingest")
	m := newManager(t, nil, first, second)

	state, err := m.Execute(ctx, operations.RunRequest{ID: "run-6"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))

	testutil.AssertOperationStatus(t, state, operations.OperationStatusCancelled)
	testutil.AssertStageCompleted(t, state, "ingest")
	testutil.AssertStageSkipped(t, state, "align")
	assert.Zero(t, second.Calls())
}

func TestManagerStepTimeout(t *testing.T) {
	cfg := operations.NewConfig()
	cfg.SetStepTimeout("slow", 20*time.Millisecond)
	m := newManager(t, cfg,
		testutil.CreateSlowStage("slow", 5*time.Second),
		testutil.CreateSuccessfulStage("after", "slow"),
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-7"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeTimeout, operations.GetErrorType(err))
	testutil.AssertStageFailed(t, state, "slow", "exceeded timeout of 20ms")
	testutil.AssertStageSkipped(t, state, "after")
}

func TestManagerDurationsFollowClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	step := testutil.CreateSuccessfulStage("derive")
	step.ExecuteFunc = func(context.Context, *operations.OperationState) error {
		clock.Advance(90 * time.Second)
		return nil
	}
	m := operations.NewManager(nil, nil, nil, discardLogger(), clock)
	require.NoError(t, m.RegisterStage(step))

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-8"})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, state.GetStage("derive").Duration())
	assert.Equal(t, 90*time.Second, state.Duration())
	assert.Equal(t, t0, *state.GetStage("derive").StartTime)
}

func TestManagerRejectsCycle(t *testing.T) {
	m := newManager(t, nil,
		testutil.CreateSuccessfulStage("a", "b"),
		testutil.CreateSuccessfulStage("b", "a"),
	)

	state, err := m.Execute(context.Background(), operations.RunRequest{ID: "run-9"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeFatal, operations.GetErrorType(err))
	testutil.AssertOperationStatus(t, state, operations.OperationStatusFailed)
}
