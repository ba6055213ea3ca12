package summary

import (
	"errors"
	"fmt"
	"time"
)

// Phase is a named window of the run to summarize.
type Phase struct {
	Name  string    `yaml:"name" json:"name" validate:"required"`
	Start time.Time `yaml:"start" json:"start" validate:"required"`
	End   time.Time `yaml:"end" json:"end" validate:"required"`
	// StabilizationHours, when set, starts the averages window instead of the
	// phase start.
	StabilizationHours *float64 `yaml:"stabilization_hours,omitempty" json:"stabilization_hours,omitempty"`
	// MaximumWindow bounds the maxima in elapsed hours. When unset the last
	// hour of the phase is used.
	MaximumWindow *HourWindow `yaml:"maximum_window,omitempty" json:"maximum_window,omitempty"`
	// IncludeLipid adds totals relative to lipid concentration.
	IncludeLipid bool `yaml:"include_lipid" json:"include_lipid"`
}

// HourWindow is a window in elapsed hours.
type HourWindow struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Validate checks the phase bounds.
func (p Phase) Validate() error {
	if p.Name == "" {
		return errors.New("phase name is required")
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("phase %s ends before it starts", p.Name)
	}
	if w := p.MaximumWindow; w != nil && w.End < w.Start {
		return fmt.Errorf("phase %s maximum window ends before it starts", p.Name)
	}
	return nil
}

// DefaultPhases returns the growth and production phases of the reference run.
func DefaultPhases() []Phase {
	stabilization := 20.0
	return []Phase{
		{
			Name:               "Growth",
			Start:              time.Date(2023, 10, 25, 13, 47, 0, 0, time.UTC),
			End:                time.Date(2023, 10, 26, 12, 5, 0, 0, time.UTC),
			StabilizationHours: &stabilization,
		},
		{
			Name:          "Production",
			Start:         time.Date(2023, 10, 26, 16, 50, 0, 0, time.UTC),
			End:           time.Date(2023, 10, 27, 15, 7, 0, 0, time.UTC),
			MaximumWindow: &HourWindow{Start: 27.05, End: 30},
			IncludeLipid:  true,
		},
	}
}
