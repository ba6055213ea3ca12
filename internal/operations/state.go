package operations

import (
	"sync"
	"time"

	"offgascli/internal/calibration"
	"offgascli/internal/rates"
	"offgascli/internal/workbook"
	"offgascli/pkg/contracts/domain"
)

// OperationStatusValue represents the overall run status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// RunData is the table hand-off between steps. Each field is written by one
// step and only read afterwards.
type RunData struct {
	Tables      *workbook.Tables
	Calibration calibration.Table
	Averaged    []domain.AveragedBucket
	Derived     *rates.Result
	Summary     *domain.Summary
	Written     []string
}

// OperationState represents the complete state of a pipeline run
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Request   RunRequest           `json:"request"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Data passed between steps
	Data *RunData `json:"-"`

	Error error `json:"-"`
}

// NewOperationState creates a new run state
func NewOperationState(req RunRequest, now time.Time) *OperationState {
	return &OperationState{
		ID:        req.ID,
		Request:   req,
		Status:    OperationStatusPending,
		StartTime: now,
		Steps:     make(map[string]*StepState),
		Data:      &RunData{},
	}
}

// Start marks the run as running
func (p *OperationState) Start(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = now
}

// Complete marks the run as completed
func (p *OperationState) Complete(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the run as failed
func (p *OperationState) Fail(now time.Time, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the run as cancelled
func (p *OperationState) Cancel(now time.Time, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific step
func (p *OperationState) GetStage(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStage updates the state of a specific step
func (p *OperationState) SetStage(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// Duration returns the duration of the run
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return 0
}

// StagesWithStatus returns the IDs of the steps in the given status
func (p *OperationState) StagesWithStatus(status StepStatus) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for id, step := range p.Steps {
		if step.GetStatus() == status {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsComplete returns true if no step is pending or active
func (p *OperationState) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		if s := step.GetStatus(); s == StepStatusPending || s == StepStatusActive {
			return false
		}
	}
	return true
}

// HasFailures returns true if any step has failed
func (p *OperationState) HasFailures() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// Response builds the externally visible view of the run
func (p *OperationState) Response() *OperationResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()

	resp := &OperationResponse{
		ID:     p.ID,
		Status: p.Status,
		Steps:  make(map[string]*StepState, len(p.Steps)),
	}
	if p.EndTime != nil {
		resp.Duration = p.EndTime.Sub(p.StartTime)
	}
	for id, step := range p.Steps {
		resp.Steps[id] = step.clone()
	}
	if p.Error != nil {
		resp.Error = p.Error.Error()
	}
	return resp
}
