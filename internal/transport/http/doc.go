// Package http serves the read-only JSON API over processed fermentation runs.
//
// Handlers never run the pipeline themselves. They read the last completed run
// from a RunSource (normally the operations manager) and answer 503 with
// RUN_NOT_READY until one exists.
//
// # Routes
//
//	GET /healthz                    liveness and last run status
//	GET /api/v1/version             build information
//	GET /api/v1/summary             per-phase summary
//	GET /api/v1/averaged?from=&to=  averaged table, optional RFC 3339 bounds
//	GET /api/v1/run?from=&to=       derived run table
//	GET /api/v1/run/{index}         one run record by grid index
//	GET /api/v1/operations          every run and its step states
//	GET /api/v1/operations/{id}     one run
//
// Errors use the envelope written by the errors package:
//
//	{"success": false, "error": {"status_code": 503, "error_code": "RUN_NOT_READY", ...}}
package http
