package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"offgascli/internal/align"
	"offgascli/internal/calibration"
	apperrors "offgascli/internal/errors"
	"offgascli/internal/exporter"
	"offgascli/internal/infrastructure"
	"offgascli/internal/rates"
	"offgascli/internal/summary"
	"offgascli/internal/timegrid"
	"offgascli/internal/workbook"
	"offgascli/pkg/contracts/domain"
)

// ExportTargets are the files written by the export step. Empty paths are
// not written.
type ExportTargets struct {
	AveragedPath string
	RunPath      string
	SummaryPath  string
	WorkbookPath string
	BOM          bool
}

// PipelineOptions configure the standard steps
type PipelineOptions struct {
	Sheets      workbook.Layout
	Calibration calibration.Layout
	Align       align.Config
	Constants   rates.Constants
	Phases      []summary.Phase
	Export      ExportTargets
	Logger      *slog.Logger
	Clock       clockwork.Clock
	Metrics     *infrastructure.PipelineMetrics
}

// DefaultPipelineOptions returns the layouts and constants of the reference
// workbook with no export targets.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Sheets:      workbook.DefaultLayout(),
		Calibration: calibration.DefaultLayout(),
		Align:       align.DefaultConfig(),
		Constants:   rates.DefaultConstants(),
		Phases:      summary.DefaultPhases(),
	}
}

// NewPipeline registers ingest, align, derive, summarize and export
func NewPipeline(opts PipelineOptions) (*Registry, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	registry := NewRegistry()
	for _, step := range []Step{
		NewIngestStage(opts.Sheets, opts.Calibration, opts.Logger, opts.Metrics),
		NewAlignStage(opts.Align, opts.Logger, opts.Metrics),
		NewDeriveStage(opts.Constants, opts.Logger, opts.Metrics),
		NewSummarizeStage(opts.Phases, opts.Logger, opts.Clock),
		NewExportStage(opts.Export, opts.Logger),
	} {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}

var (
	errNoWorkbook = errors.New("workbook path is required")
	errNoRunStart = errors.New("run start is required")
	errNotReady   = errors.New("input from a previous step is missing")
)

// IngestStage reads the workbook sheets and the calibration breakpoints
type IngestStage struct {
	BaseStage
	sheets      workbook.Layout
	calibration calibration.Layout
	logger      *slog.Logger
	metrics     *infrastructure.PipelineMetrics
}

// NewIngestStage creates the ingest step
func NewIngestStage(sheets workbook.Layout, cal calibration.Layout, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *IngestStage {
	return &IngestStage{
		BaseStage:   NewBaseStage(StepIDIngest, StepNameIngest, nil),
		sheets:      sheets,
		calibration: cal,
		logger:      logger.With(slog.String("step", StepIDIngest)),
		metrics:     metrics,
	}
}

// Validate requires a workbook path
func (s *IngestStage) Validate(state *OperationState) error {
	if state.Request.Workbook == "" {
		return errNoWorkbook
	}
	return nil
}

// Execute opens the workbook and parses every sheet
func (s *IngestStage) Execute(ctx context.Context, state *OperationState) error {
	wb, err := workbook.Open(state.Request.Workbook, s.logger)
	if err != nil {
		return err
	}
	defer wb.Close()

	tables, err := wb.ReadAll(s.sheets)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	table, err := calibration.LoadTable(tables.Calibration, s.calibration)
	if err != nil {
		return apperrors.NewParsingError("failed to load calibration table", err)
	}

	state.Data.Tables = tables
	state.Data.Calibration = table

	s.metrics.RecordRows(ctx, "analyzer", tables.Analyzer.Len())
	s.metrics.RecordRows(ctx, "controller", tables.Controller.Len())

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("analyzer_rows", tables.Analyzer.Len())
	stepState.SetMetadata("controller_rows", tables.Controller.Len())

	s.logger.InfoContext(ctx, "workbook ingested",
		slog.String("workbook", state.Request.Workbook),
		slog.Int("analyzer_rows", tables.Analyzer.Len()),
		slog.Int("controller_rows", tables.Controller.Len()),
		slog.Int("side_rows", len(table.Side)))
	return nil
}

// AlignStage builds the averaged one-minute grid
type AlignStage struct {
	BaseStage
	aligner *align.Aligner
	config  align.Config
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewAlignStage creates the align step
func NewAlignStage(cfg align.Config, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *AlignStage {
	logger = logger.With(slog.String("step", StepIDAlign))
	return &AlignStage{
		BaseStage: NewBaseStage(StepIDAlign, StepNameAlign, []string{StepIDIngest}),
		aligner:   align.NewAligner(logger),
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Validate requires the ingested tables
func (s *AlignStage) Validate(state *OperationState) error {
	if t := state.Data.Tables; t == nil || t.Analyzer == nil || t.Controller == nil {
		return errNotReady
	}
	return nil
}

// Execute aligns both instruments
func (s *AlignStage) Execute(ctx context.Context, state *OperationState) error {
	t := state.Data.Tables
	buckets, err := s.aligner.BuildAveraged(ctx, t.Analyzer, t.Controller, s.config)
	if err != nil {
		return err
	}
	state.Data.Averaged = buckets
	s.metrics.RecordRows(ctx, "averaged", len(buckets))
	state.GetStage(s.ID()).SetMetadata("steps", len(buckets))
	return nil
}

// DeriveStage computes the run table on the day grid of the run start
type DeriveStage struct {
	BaseStage
	constants rates.Constants
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
}

// NewDeriveStage creates the derive step
func NewDeriveStage(constants rates.Constants, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *DeriveStage {
	return &DeriveStage{
		BaseStage: NewBaseStage(StepIDDerive, StepNameDerive, []string{StepIDAlign}),
		constants: constants,
		logger:    logger.With(slog.String("step", StepIDDerive)),
		metrics:   metrics,
	}
}

// Validate requires a run start and the averaged grid
func (s *DeriveStage) Validate(state *OperationState) error {
	if state.Request.RunStart.IsZero() {
		return errNoRunStart
	}
	if state.Data.Averaged == nil {
		return errNotReady
	}
	return nil
}

// Execute derives the run records
func (s *DeriveStage) Execute(ctx context.Context, state *OperationState) error {
	grid, err := timegrid.NewDayGrid(state.Request.RunStart)
	if err != nil {
		return fmt.Errorf("failed to build run grid: %w", err)
	}

	engine, err := rates.NewEngine(s.constants, state.Data.Calibration, s.logger)
	if err != nil {
		return apperrors.NewConfigError("invalid rate constants", err)
	}
	result, err := engine.Compute(ctx, grid, state.Data.Averaged)
	if err != nil {
		return err
	}
	state.Data.Derived = result

	st := result.Stats
	s.metrics.RecordRows(ctx, "run", len(result.Records))
	s.metrics.RecordAnomalies(ctx, "join_miss", "", st.JoinMisses)
	s.metrics.RecordAnomalies(ctx, "zero_biomass", "", st.ZeroBiomass)
	for _, g := range domain.Gases {
		s.metrics.RecordAnomalies(ctx, "unmatched_breakpoint", g.String(), st.Unmatched[g])
		s.metrics.RecordAnomalies(ctx, "clipped_rate", g.String(), st.Clipped[g])
	}

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("steps", st.Steps)
	stepState.SetMetadata("join_misses", st.JoinMisses)
	return nil
}

// SummarizeStage aggregates the run table per phase
type SummarizeStage struct {
	BaseStage
	phases     []summary.Phase
	summarizer *summary.Summarizer
}

// NewSummarizeStage creates the summarize step
func NewSummarizeStage(phases []summary.Phase, logger *slog.Logger, clock clockwork.Clock) *SummarizeStage {
	return &SummarizeStage{
		BaseStage:  NewBaseStage(StepIDSummarize, StepNameSummarize, []string{StepIDDerive}),
		phases:     phases,
		summarizer: summary.NewSummarizer(logger.With(slog.String("step", StepIDSummarize)), clock),
	}
}

// Validate requires the derived run table
func (s *SummarizeStage) Validate(state *OperationState) error {
	if state.Data.Derived == nil {
		return errNotReady
	}
	return nil
}

// Execute summarizes the run
func (s *SummarizeStage) Execute(ctx context.Context, state *OperationState) error {
	sum, err := s.summarizer.Calculate(ctx, state.ID, state.Data.Derived.Records, s.phases)
	if err != nil {
		return err
	}
	state.Data.Summary = sum
	state.GetStage(s.ID()).SetMetadata("phases", len(sum.Phases))
	return nil
}

// ExportStage writes the averaged grid, the run table and the summary
type ExportStage struct {
	BaseStage
	targets ExportTargets
	bundle  *exporter.Bundle
}

// NewExportStage creates the export step
func NewExportStage(targets ExportTargets, logger *slog.Logger) *ExportStage {
	return &ExportStage{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport, []string{StepIDSummarize}),
		targets:   targets,
		bundle:    exporter.NewBundle(logger.With(slog.String("step", StepIDExport))),
	}
}

// Validate requires a summary and at least one target
func (s *ExportStage) Validate(state *OperationState) error {
	if state.Data.Summary == nil || state.Data.Derived == nil {
		return errNotReady
	}
	t := s.targets
	if t.AveragedPath == "" && t.RunPath == "" && t.SummaryPath == "" && t.WorkbookPath == "" {
		return errors.New("no export targets configured")
	}
	return nil
}

// Execute writes every configured artifact
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	d := state.Data
	var averagedSeed, runSeed *domain.SourceTable
	if d.Tables != nil {
		averagedSeed, runSeed = d.Tables.Averaged, d.Tables.Run
	}

	written, err := s.bundle.WriteAll(ctx, exporter.Artifacts{
		Averaged:     exporter.AveragedTable(d.Averaged, averagedSeed),
		Run:          exporter.RunTable(d.Derived.Records, runSeed),
		Summary:      d.Summary,
		AveragedPath: s.targets.AveragedPath,
		RunPath:      s.targets.RunPath,
		SummaryPath:  s.targets.SummaryPath,
		WorkbookPath: s.targets.WorkbookPath,
		BOM:          s.targets.BOM,
	})
	if err != nil {
		return fmt.Errorf("failed to export artifacts: %w", err)
	}
	d.Written = written
	state.GetStage(s.ID()).SetMetadata("files", len(written))
	return nil
}
