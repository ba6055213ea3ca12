package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"offgascli/internal/operations"
)

// MockStage is a configurable step
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	ExecuteCalls  int
	ValidateCalls int
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	if m.NameValue == "" {
		return m.IDValue
	}
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute records the call and runs ExecuteFunc
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.ExecuteCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate records the call and runs ValidateFunc
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// Calls returns the number of Execute calls
func (m *MockStage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id string, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         id + " step",
		DependenciesValue: deps,
	}
}

// CreateFailingStage creates a step whose Execute returns an error
func CreateFailingStage(id, message string, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         id + " step",
		DependenciesValue: deps,
		ExecuteFunc: func(context.Context, *operations.OperationState) error {
			return errors.New(message)
		},
	}
}

// CreateSlowStage creates a step that waits for delay or for the context
func CreateSlowStage(id string, delay time.Duration, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         id + " step",
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, _ *operations.OperationState) error {
			select {
			case <-time.After(delay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// CreateRecordingStage creates a step that appends its ID to order
func CreateRecordingStage(id string, order *[]string, mu *sync.Mutex, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         id + " step",
		DependenciesValue: deps,
		ExecuteFunc: func(context.Context, *operations.OperationState) error {
			mu.Lock()
			*order = append(*order, id)
			mu.Unlock()
			return nil
		},
	}
}
