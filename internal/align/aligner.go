package align

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

// Aligner computes windowed means of source tables over a grid.
type Aligner struct {
	logger *slog.Logger
}

// NewAligner creates an aligner. A nil logger falls back to slog.Default.
func NewAligner(logger *slog.Logger) *Aligner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aligner{logger: logger}
}

// Align produces one mean per channel for every grid step.
func (a *Aligner) Align(ctx context.Context, grid timegrid.Grid, table *domain.SourceTable, spec SourceSpec) (*Alignment, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid for %s: %w", spec.Name, err)
	}

	times, err := table.Times(spec.TimeColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s timestamps: %w", spec.Name, err)
	}
	if !hasTime(times) {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrNoTimestamps)
	}

	columns := make([][]domain.Value, len(spec.Channels))
	for ci, ch := range spec.Channels {
		columns[ci], err = table.Values(ch.Column)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s channel %s: %w", spec.Name, ch.Name, err)
		}
	}

	a.logger.InfoContext(ctx, "aligning source onto grid",
		"source", spec.Name,
		"rows", len(times),
		"steps", len(grid),
		"window_rows", spec.WindowRows,
		"lead_rows", spec.LeadRows)

	clock := grid.Shift(spec.ClockOffset)
	out := &Alignment{
		Source:  spec.Name,
		Clock:   clock,
		Windows: make([]domain.Window, len(grid)),
		Means:   make([][]domain.Value, len(grid)),
	}

	for i := range clock {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w := SearchWindow(times, clock[i], spec)
		out.Windows[i] = w

		rows := Filter(times, w, clock[i], clock.Next(i))
		means := make([]domain.Value, len(columns))
		for ci, col := range columns {
			means[ci] = Mean(col, rows)
		}
		if len(rows) == 0 {
			out.Empty++
		}
		out.Means[i] = means
	}

	a.logger.InfoContext(ctx, "source aligned",
		"source", spec.Name,
		"steps", len(grid),
		"empty_steps", out.Empty)

	return out, nil
}

// SearchWindow returns the row range scanned for a step starting at t.
func SearchWindow(times []time.Time, t time.Time, spec SourceSpec) domain.Window {
	lower := timegrid.Search(times, t, spec.Side) + spec.LeadRows
	return domain.Window{Lower: lower, Upper: lower + spec.WindowRows}
}

// Filter returns the rows inside the inclusive window whose timestamps lie in
// [lo, hi). Window bounds past the table are clipped.
func Filter(times []time.Time, w domain.Window, lo, hi time.Time) []int {
	upper := w.Upper
	if upper > len(times)-1 {
		upper = len(times) - 1
	}
	var rows []int
	for r := w.Lower; r <= upper; r++ {
		t := times[r]
		if t.IsZero() {
			continue
		}
		if !t.Before(lo) && t.Before(hi) {
			rows = append(rows, r)
		}
	}
	return rows
}

// Mean averages the defined values at rows. No defined value yields NaN.
func Mean(col []domain.Value, rows []int) domain.Value {
	var sum float64
	var n int
	for _, r := range rows {
		v := col[r]
		if !v.IsDefined() {
			continue
		}
		sum += v.Float()
		n++
	}
	if n == 0 {
		return domain.NaN()
	}
	return domain.Num(sum / float64(n))
}

func hasTime(ts []time.Time) bool {
	for _, t := range ts {
		if !t.IsZero() {
			return true
		}
	}
	return false
}
