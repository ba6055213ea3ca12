// Package app assembles an offgas run: configuration, logging, telemetry,
// the staged pipeline and the read-only HTTP API.
//
// # Lifecycle
//
//	1. Resolve paths against the base directory and create output folders
//	2. Build the console/file logger
//	3. Initialize OpenTelemetry and the pipeline instruments
//	4. Register the pipeline steps on an operations.Manager
//	5. Set up the chi router
//
// One-shot commands call Process then Close. The serve command calls Process
// and then Run, which blocks until interrupted and shuts down gracefully.
//
// # Usage
//
//	a, err := app.NewApplication(cfg, app.Options{})
//	if err != nil {
//	    return err
//	}
//	defer a.Close(context.Background())
//	state, err := a.Process(ctx, "run.xlsx", start)
package app
