package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"offgascli/internal/config"
	"offgascli/internal/infrastructure"
	customMiddleware "offgascli/internal/middleware"
	"offgascli/internal/operations"
	handlers "offgascli/internal/transport/http"
	"offgascli/internal/validation"
	"offgascli/pkg/contracts"
)

// Options adjust how an Application is assembled
type Options struct {
	// BaseDir resolves relative paths; empty means the working directory.
	BaseDir string
	// Console receives human-readable logs; nil means stderr.
	Console io.Writer
	// TraceWriter receives finished spans when tracing is enabled.
	TraceWriter io.Writer
	Clock       clockwork.Clock
	// NoExport skips the export step.
	NoExport bool
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Manager       *operations.Manager
	Router        *chi.Mux
	Server        *http.Server

	listener  net.Listener
	validator *validation.FileValidator
	options   Options
}

// NewApplication wires configuration, logging, telemetry and the pipeline
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	paths, err := cfg.Paths(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, err := infrastructure.NewLogger(logCfg, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))
	paths.LogPathResolution(logger)

	validator := validation.NewFileValidator(logger)
	if !opts.NoExport {
		if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
			return nil, err
		}
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	if cfg.Metrics.ServiceName != "" {
		otelCfg.ServiceName = cfg.Metrics.ServiceName
	}
	otelCfg.EnableMetrics = cfg.Metrics.Enabled
	otelCfg.EnableTracing = cfg.Metrics.Tracing
	otelCfg.TraceWriter = opts.TraceWriter
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	registry, err := operations.NewPipeline(operations.PipelineOptions{
		Sheets:      cfg.Input.Sheets,
		Calibration: operations.DefaultPipelineOptions().Calibration,
		Align:       operations.DefaultPipelineOptions().Align,
		Constants:   cfg.Run.Constants,
		Phases:      cfg.Phases,
		Export: operations.ExportTargets{
			AveragedPath: paths.AveragedCSV,
			RunPath:      paths.RunCSV,
			SummaryPath:  paths.SummaryJSON,
			WorkbookPath: paths.WorkbookXLSX,
			BOM:          cfg.Output.IncludeBOM,
		},
		Logger:  logger,
		Clock:   opts.Clock,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Manager: operations.NewManager(registry, operations.NewConfig(),
			operations.NewOperationTracer(metrics), logger, opts.Clock),
		validator: validator,
		options:   opts,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// Process runs the pipeline over the workbook. An empty workbook falls back
// to the configured input and a zero runStart to the configured start.
func (a *Application) Process(ctx context.Context, workbook string, runStart time.Time) (*operations.OperationState, error) {
	if workbook == "" {
		workbook = a.Paths.Workbook
	}
	if runStart.IsZero() && a.Config.Run.Start != "" {
		t, err := a.Config.RunStart()
		if err != nil {
			return nil, err
		}
		runStart = t
	}
	if err := a.validator.ValidateWorkbook(workbook); err != nil {
		return nil, err
	}

	req := operations.RunRequest{Workbook: workbook, RunStart: runStart}
	if a.options.NoExport {
		req.Skip = []string{operations.StepIDExport}
	}
	ctx = infrastructure.EnsureRunID(ctx)
	return a.Manager.Execute(ctx, req)
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	health := handlers.NewHealthHandler(a.Manager, a.Logger)
	r.Get(config.HealthEndpoint, health.HealthCheck)

	r.Group(func(r chi.Router) {
		if rl := a.Config.Server.RateLimit; rl.Enabled && rl.RPS > 0 {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}
		r.Get(config.APIBasePath+"/version", health.Version)
		r.Mount(config.APIBasePath+"/operations", handlers.NewOperationsHandler(a.Manager, a.Logger).Routes())
		r.Mount(config.APIBasePath, handlers.NewDataHandler(a.Manager, a.Logger).Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. A serve error
// cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", a.Addr()),
		slog.String("version", contracts.Version))
	return nil
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down server")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close writes the metrics textfile and shuts down telemetry. It is the
// last call of a one-shot command.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Config.Metrics.Enabled {
		if err := a.OTelProviders.WriteTextfile(a.Paths.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled or an interrupt arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("received shutdown signal")
	return a.Stop(context.Background())
}
