package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/internal/operations"
)

// AssertStepStatus verifies a step has the expected status
func AssertStepStatus(t *testing.T, state *operations.OperationState, stepID string, expected operations.StepStatus) {
	t.Helper()
	require.NotNil(t, state, "operation state is nil")
	step := state.GetStage(stepID)
	require.NotNil(t, step, "step %s not found", stepID)
	assert.Equal(t, expected, step.GetStatus(), "step %s status", stepID)
}

// AssertOperationStatus verifies an operation has the expected status
func AssertOperationStatus(t *testing.T, state *operations.OperationState, expected operations.OperationStatusValue) {
	t.Helper()
	require.NotNil(t, state, "operation state is nil")
	assert.Equal(t, expected, state.GetStatus())
}

// AssertStageCompleted verifies a step completed with both timestamps set
func AssertStageCompleted(t *testing.T, state *operations.OperationState, stepID string) {
	t.Helper()
	AssertStepStatus(t, state, stepID, operations.StepStatusCompleted)
	step := state.GetStage(stepID)
	assert.NotNil(t, step.StartTime, "step %s has no start time", stepID)
	assert.NotNil(t, step.EndTime, "step %s has no end time", stepID)
	assert.Empty(t, step.Error)
}

// AssertStageSkipped verifies a step was skipped and never started
func AssertStageSkipped(t *testing.T, state *operations.OperationState, stepID string) {
	t.Helper()
	AssertStepStatus(t, state, stepID, operations.StepStatusSkipped)
	assert.Nil(t, state.GetStage(stepID).StartTime, "skipped step %s has a start time", stepID)
}

// AssertStageFailed verifies a step failed with an error containing msg
func AssertStageFailed(t *testing.T, state *operations.OperationState, stepID, msg string) {
	t.Helper()
	AssertStepStatus(t, state, stepID, operations.StepStatusFailed)
	assert.Contains(t, state.GetStage(stepID).Error, msg)
}
