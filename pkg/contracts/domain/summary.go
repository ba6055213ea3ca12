package domain

import "time"

// Metric is a named value with its unit. Value is nil when the window held no data.
type Metric struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// HourRange is a window in elapsed fermentation hours.
type HourRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Unit  string  `json:"unit"`
}

// PhaseSummary aggregates one named phase of the run.
type PhaseSummary struct {
	Name          string    `json:"name"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Elapsed       HourRange `json:"elapsed_fermentation_time"`
	Stabilization *Metric   `json:"stabilization_time,omitempty"`
	Totals        []Metric  `json:"totals"`
	MaximumWindow HourRange `json:"eft_time_range"`
	Maximums      []Metric  `json:"maximums"`
	Averages      []Metric  `json:"averages"`
}

// Summary is the per-phase report for a run.
type Summary struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	RunStart    time.Time      `json:"run_start"`
	Phases      []PhaseSummary `json:"phases"`
}

// Phase returns the named phase summary.
func (s *Summary) Phase(name string) (PhaseSummary, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseSummary{}, false
}

// FindMetric finds a metric by name in a list.
func FindMetric(ms []Metric, name string) (Metric, bool) {
	for _, m := range ms {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}
