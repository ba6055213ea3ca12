package align

import (
	"errors"
	"fmt"
	"time"

	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

const (
	// DefaultWindowRows caps how many source rows are scanned per step.
	DefaultWindowRows = 1000

	// DefaultAnalyzerLeadRows skips lead-in rows written before the analyzer
	// clock catches up with the grid.
	DefaultAnalyzerLeadRows = 8

	// DefaultAnalyzerClockOffset is the difference between the analyzer's
	// search clock and the grid clock.
	DefaultAnalyzerClockOffset = 4 * time.Hour
)

var (
	ErrNoChannels   = errors.New("source spec declares no channels")
	ErrNoTimestamps = errors.New("source table has no timestamps")
)

// Channel maps one averaged output to a source column.
type Channel struct {
	Name   string
	Column string
}

// SourceSpec describes how one instrument is aligned onto the grid.
type SourceSpec struct {
	Name string
	// TimeColumn is searched and filtered against the grid clock.
	TimeColumn string
	LeadRows   int
	WindowRows int
	Side       timegrid.Side
	// ClockOffset shifts the grid before it is compared with TimeColumn.
	ClockOffset time.Duration
	Channels    []Channel
}

// Validate checks the spec is usable.
func (s SourceSpec) Validate() error {
	if s.TimeColumn == "" {
		return fmt.Errorf("source %s: time column is required", s.Name)
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("source %s: %w", s.Name, ErrNoChannels)
	}
	if s.WindowRows < 0 || s.LeadRows < 0 {
		return fmt.Errorf("source %s: window and lead rows must be non-negative", s.Name)
	}
	return nil
}

// Alignment is the per-step result for one source.
type Alignment struct {
	Source string
	// Clock is the grid as seen by the source, i.e. shifted by ClockOffset.
	Clock   timegrid.Grid
	Windows []domain.Window
	// Means is indexed [step][channel] in SourceSpec.Channels order.
	Means [][]domain.Value
	// Empty counts steps with no matching rows.
	Empty int
}

// Channel returns the per-step means of the named channel.
func (a *Alignment) Channel(name string, spec SourceSpec) ([]domain.Value, error) {
	for ci, ch := range spec.Channels {
		if ch.Name != name {
			continue
		}
		out := make([]domain.Value, len(a.Means))
		for i := range a.Means {
			out[i] = a.Means[i][ci]
		}
		return out, nil
	}
	return nil, fmt.Errorf("source %s has no channel %q", spec.Name, name)
}
