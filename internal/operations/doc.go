// Package operations runs the off-gas pipeline as a sequence of dependent
// steps.
//
// Core Components:
//
// Manager: executes the registered steps in dependency order, tracks each run
// and records a span plus step metrics per step.
//
// Step: a single unit of work. The standard steps are ingest, align, derive,
// summarize and export; NewPipeline registers them with their dependencies.
//
// Registry: holds the steps and resolves the execution order. Steps that
// become runnable together keep their registration order.
//
// State: OperationState tracks the run and every StepState. RunData carries
// the tables, the averaged grid, the run table and the summary from one step
// to the next.
//
// Config: per-step timeouts and whether a failed step stops the run.
//
// Usage Example:
//
//	registry, err := operations.NewPipeline(opts)
//	if err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger, nil)
//	state, err := manager.Execute(ctx, operations.RunRequest{
//		Workbook: "run.xlsx",
//		RunStart: start,
//	})
//
// A step that fails skips every step after it unless ContinueOnError is set,
// in which case only its dependents are skipped.
package operations
