package exporter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"offgascli/pkg/contracts/domain"
)

// Artifacts are the outputs of one run.
type Artifacts struct {
	Averaged     *Table
	Run          *Table
	Summary      *domain.Summary
	AveragedPath string
	RunPath      string
	SummaryPath  string
	// WorkbookPath is optional; empty skips the workbook.
	WorkbookPath string
	BOM          bool
}

// Bundle writes every artifact of a run.
type Bundle struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewBundle creates a bundle writer
func NewBundle(logger *slog.Logger) *Bundle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundle{csv: NewCSVWriter(logger), logger: logger}
}

// WriteAll writes the artifacts concurrently and returns the first error.
func (b *Bundle) WriteAll(ctx context.Context, a Artifacts) ([]string, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var written []string
	add := func(path string, fn func() error) {
		if path == "" {
			return
		}
		written = append(written, path)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}

	add(a.AveragedPath, func() error { return b.csv.WriteTable(a.AveragedPath, a.Averaged, a.BOM) })
	add(a.RunPath, func() error { return b.csv.WriteTable(a.RunPath, a.Run, a.BOM) })
	if a.Summary != nil {
		add(a.SummaryPath, func() error { return WriteSummaryJSON(a.SummaryPath, a.Summary) })
	}
	add(a.WorkbookPath, func() error { return WriteXLSX(a.WorkbookPath, a.Averaged, a.Run, a.Summary) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.InfoContext(ctx, "artifacts written",
		slog.Int("files", len(written)),
		slog.Duration("duration", time.Since(start)))
	return written, nil
}
