package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"offgascli/internal/infrastructure"
)

// Manager orchestrates pipeline runs
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
	clock    clockwork.Clock

	mu         sync.RWMutex
	operations map[string]*OperationState
	last       *OperationState
}

// NewManager creates a new pipeline manager. Nil arguments fall back to an
// empty registry, the default config, a span-only tracer, the default logger
// and the real clock.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger, clock clockwork.Clock) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Manager{
		registry:   registry,
		config:     config,
		tracer:     tracer,
		logger:     infrastructure.WithComponent(logger, "operations"),
		clock:      clock,
		operations: make(map[string]*OperationState),
	}
}

// RegisterStage registers a step with the pipeline
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// SetConfig updates the pipeline configuration
func (m *Manager) SetConfig(config *Config) {
	if config != nil {
		m.config = config
	}
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step in dependency order. The returned state
// is kept by the manager and is complete once Execute returns.
func (m *Manager) Execute(ctx context.Context, req RunRequest) (*OperationState, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetRunID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req, m.clock.Now())

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = NewFatalError("failed to get dependency order", err)
		m.logOperationError(ctx, req.ID, err)
		state.Fail(m.clock.Now(), err)
		return state, err
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}
	m.storeOperation(state)

	ctx, span := m.tracer.TraceOperationExecution(ctx, req)
	defer span.End()

	state.Start(m.clock.Now())
	m.logOperationStart(ctx, state, len(steps))

	err = m.executeSequential(ctx, state, steps)

	now := m.clock.Now()
	switch {
	case err == nil:
		state.Complete(now)
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(now, err)
	default:
		state.Fail(now, err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.GetStatus())
	return state, err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	skip := make(map[string]bool, len(state.Request.Skip))
	for _, id := range state.Request.Skip {
		skip[id] = true
	}

	var firstErr error
	for i, step := range steps {
		stepState := state.GetStage(step.ID())

		if err := ctx.Err(); err != nil {
			m.skipRemaining(ctx, state, steps[i:], "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		if skip[step.ID()] {
			stepState.Skip(m.clock.Now(), "excluded by request")
			m.logStageSkipped(ctx, state.ID, step.ID(), "excluded by request")
			continue
		}

		if err := m.checkDependencies(state, step); err != nil {
			stepState.Skip(m.clock.Now(), err.Error())
			m.logStageSkipped(ctx, state.ID, step.ID(), err.Error())
			continue
		}

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			if !m.config.ContinueOnError || GetErrorType(err) == ErrorTypeCancellation {
				m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// executeStage validates and runs a single step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("step state not found for %s", step.ID()), nil)
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(m.clock.Now(), verr)
		return verr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStageExecution(stepCtx, state.ID, step.ID())
	defer span.End()

	m.logStageStart(stepCtx, state.ID, step.ID())
	start := m.clock.Now()
	stepState.Start(start)

	err := step.Execute(stepCtx, state)

	end := m.clock.Now()
	duration := end.Sub(start)

	if err != nil {
		err = m.classify(ctx, stepCtx, step.ID(), timeout.String(), err)
		stepState.Fail(end, err)
		m.tracer.RecordStageCompletion(stepCtx, span, step.ID(), duration, err)
		return err
	}

	stepState.Complete(end)
	m.tracer.RecordStageCompletion(stepCtx, span, step.ID(), duration, nil)
	m.logStageComplete(stepCtx, state.ID, step.ID(), duration)
	return nil
}

// classify maps a step error onto the error taxonomy
func (m *Manager) classify(ctx, stepCtx context.Context, stepID, timeout string, err error) error {
	switch {
	case ctx.Err() != nil:
		return NewCancellationError(stepID, ctx.Err())
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		return NewTimeoutError(stepID, timeout)
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return NewExecutionError(stepID, err)
}

// skipRemaining marks the pending steps as skipped
func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		stepState := state.GetStage(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(m.clock.Now(), reason)
			m.logStageSkipped(ctx, state.ID, step.ID(), reason)
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return fmt.Errorf("dependency %s not found", dep)
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, status)
		}
	}
	return nil
}

// GetOperation retrieves a run by ID
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return state, nil
}

// Last returns the most recent run, or nil before the first one
func (m *Manager) Last() *OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// ListOperations returns the responses of every run
func (m *Manager) ListOperations() []*OperationResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*OperationResponse, 0, len(m.operations))
	for _, state := range m.operations {
		out = append(out, state.Response())
	}
	return out
}

// storeOperation stores a run state
func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
	m.last = state
}
