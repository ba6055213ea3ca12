package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths are the resolved locations a run reads and writes.
type Paths struct {
	Workbook     string
	OutputDir    string
	AveragedCSV  string
	RunCSV       string
	SummaryJSON  string
	WorkbookXLSX string
	LogFile      string
	MetricsFile  string
}

// ExecutableDir returns the directory holding the running binary
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// Paths resolves the configured locations against base. Absolute entries are
// kept as they are; an empty base is the working directory.
func (c *Config) Paths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	out := abs(c.Output.Directory)
	p := &Paths{
		Workbook:    abs(c.Input.Workbook),
		OutputDir:   out,
		AveragedCSV: filepath.Join(out, c.Output.AveragedFile),
		RunCSV:      filepath.Join(out, c.Output.RunFile),
		SummaryJSON: filepath.Join(out, c.Output.SummaryFile),
		LogFile:     abs(c.Logging.FilePath),
		MetricsFile: abs(c.Metrics.TextFile),
	}
	if c.Output.WriteXLSX && c.Output.WorkbookFile != "" {
		p.WorkbookXLSX = filepath.Join(out, c.Output.WorkbookFile)
	}
	return p, nil
}

// EnsureDirectories creates the output and log directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, filepath.Dir(p.LogFile)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ValidateInput checks that the workbook exists
func (p *Paths) ValidateInput() error {
	if p.Workbook == "" {
		return fmt.Errorf("no workbook configured")
	}
	if !FileExists(p.Workbook) {
		return fmt.Errorf("workbook not found: %s", p.Workbook)
	}
	return nil
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("paths resolved",
		slog.String("workbook", p.Workbook),
		slog.String("output_dir", p.OutputDir),
		slog.String("log_file", p.LogFile),
		slog.String("metrics_file", p.MetricsFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
