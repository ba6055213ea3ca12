package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDIngest    = "ingest"
	StepIDAlign     = "align"
	StepIDDerive    = "derive"
	StepIDSummarize = "summarize"
	StepIDExport    = "export"
)

// Pipeline step names
const (
	StepNameIngest    = "Workbook Ingest"
	StepNameAlign     = "Time-Bucket Alignment"
	StepNameDerive    = "Rate Derivation"
	StepNameSummarize = "Phase Summary"
	StepNameExport    = "Artifact Export"
)

// Default timeouts
const (
	DefaultStepTimeout   = 5 * time.Minute
	DefaultIngestTimeout = 2 * time.Minute
	DefaultExportTimeout = 2 * time.Minute
)

// RunRequest describes one pipeline run.
type RunRequest struct {
	ID       string    `json:"id"`
	Workbook string    `json:"workbook"`
	RunStart time.Time `json:"run_start"`
	// Skip lists steps to leave out. Steps depending on a skipped step are
	// skipped as well.
	Skip []string `json:"skip,omitempty"`
}

// OperationResponse represents the response from a pipeline run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
