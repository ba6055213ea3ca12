// Package summary aggregates the derived run table into per-phase totals,
// maxima and averages.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

// Units used in the report.
const (
	UnitHours      = "hrs"
	UnitPerBiomass = "g/g"
	UnitPerVolume  = "g/L"
	UnitRate       = "mmol/L/hr"
	UnitSpecificHr = "g/g/hr"
)

var gasLabels = map[domain.Gas]string{
	domain.Hydrogen:      "Hydrogen",
	domain.CarbonDioxide: "Carbon Dioxide",
	domain.Oxygen:        "Oxygen",
}

// Summarizer computes phase summaries.
type Summarizer struct {
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewSummarizer creates a summarizer. Nil arguments fall back to the default
// logger and the real clock.
func NewSummarizer(logger *slog.Logger, clock clockwork.Clock) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Summarizer{logger: logger, clock: clock}
}

// Calculate summarizes records over each phase.
func (s *Summarizer) Calculate(ctx context.Context, runID string, records []domain.RunRecord, phases []Phase) (*domain.Summary, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot summarize an empty run table")
	}

	s.logger.InfoContext(ctx, "calculating run summary",
		slog.Int("records", len(records)),
		slog.Int("phases", len(phases)))

	v := newView(records)
	out := &domain.Summary{
		RunID:       runID,
		GeneratedAt: s.clock.Now(),
		RunStart:    records[0].Time,
	}

	for _, p := range phases {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid phase: %w", err)
		}
		out.Phases = append(out.Phases, s.phase(v, p))
	}

	s.logger.InfoContext(ctx, "run summary calculated", slog.Int("phases", len(out.Phases)))
	return out, nil
}

func (s *Summarizer) phase(v *view, p Phase) domain.PhaseSummary {
	st, end := v.hoursAt(p.Start), v.hoursAt(p.End)

	ps := domain.PhaseSummary{
		Name:    p.Name,
		Start:   p.Start,
		End:     p.End,
		Elapsed: domain.HourRange{Start: st, End: end, Unit: UnitHours},
	}

	avgStart := st
	if p.StabilizationHours != nil {
		avgStart = *p.StabilizationHours
		ps.Stabilization = &domain.Metric{Name: "Stabilization Time of g/g Data", Value: p.StabilizationHours, Unit: UnitHours}
	}

	maxWin := HourWindow{Start: end - 1, End: end}
	if p.MaximumWindow != nil {
		maxWin = *p.MaximumWindow
	}
	ps.MaximumWindow = domain.HourRange{Start: maxWin.Start, End: maxWin.End, Unit: UnitHours}

	stepTotal := func(g domain.Gas) func(*domain.RunRecord) float64 {
		return func(r *domain.RunRecord) float64 { return r.StepTotal.Get(g).Float() }
	}
	for _, g := range domain.Gases {
		ps.Totals = append(ps.Totals, domain.Metric{
			Name:  gasLabels[g] + " Consumed/Biomass",
			Value: v.total(stepTotal(g), biomass, st, end),
			Unit:  UnitPerBiomass,
		})
	}
	for _, g := range domain.Gases {
		ps.Totals = append(ps.Totals, domain.Metric{
			Name:  gasLabels[g] + " Consumed/Volume",
			Value: v.total(stepTotal(g), workingVolume, st, end),
			Unit:  UnitPerVolume,
		})
	}
	if p.IncludeLipid {
		for _, g := range domain.Gases {
			ps.Totals = append(ps.Totals, domain.Metric{
				Name:  gasLabels[g] + " Consumed/TAG",
				Value: v.total(stepTotal(g), lipid, st, end),
				Unit:  UnitPerBiomass,
			})
		}
	}

	for _, g := range domain.Gases {
		ps.Maximums = append(ps.Maximums, domain.Metric{
			Name:  gasLabels[g] + " Consumption Rate",
			Value: v.maximum(func(r *domain.RunRecord) float64 { return r.MolarRate.Get(g).Float() }, maxWin.Start, maxWin.End),
			Unit:  UnitRate,
		})
	}
	for _, g := range domain.Gases {
		ps.Averages = append(ps.Averages, domain.Metric{
			Name:  gasLabels[g] + " Consumption/Biomass/Hr",
			Value: v.mean(func(r *domain.RunRecord) float64 { return r.SpecificRate.Get(g).Float() }, avgStart, end),
			Unit:  UnitSpecificHr,
		})
	}
	return ps
}

func biomass(r *domain.RunRecord) float64       { return r.Biomass.Float() }
func workingVolume(r *domain.RunRecord) float64 { return r.WorkingVolume.Float() }
func lipid(r *domain.RunRecord) float64         { return r.Lipid.Float() }

// view answers window queries against the elapsed-hours column.
type view struct {
	records []domain.RunRecord
	hours   []float64
	times   timegrid.Grid
}

func newView(records []domain.RunRecord) *view {
	v := &view{records: records, hours: make([]float64, len(records)), times: make(timegrid.Grid, len(records))}
	for i := range records {
		v.hours[i] = records[i].ElapsedHours.Float()
		v.times[i] = records[i].Time
	}
	return v
}

// hoursAt maps a timestamp to elapsed hours at the first step at or after it,
// clamped to the last step.
func (v *view) hoursAt(t time.Time) float64 {
	i := timegrid.SearchLeft(v.times, t)
	if i >= len(v.hours) {
		i = len(v.hours) - 1
	}
	return v.hours[i]
}

// total sums field over [st, end) and divides by divisor at the last step at
// or before end. The reference workbook divides by the first such step
// instead, so totals over windows where the divisor changes differ from it.
// Non-finite field values are skipped; a non-finite or zero divisor gives nil.
func (v *view) total(field, divisor func(*domain.RunRecord) float64, st, end float64) *float64 {
	var sum float64
	last := -1
	for i := range v.records {
		h := v.hours[i]
		if h <= end {
			last = i
		}
		if h >= st && h < end {
			if x := field(&v.records[i]); finite(x) {
				sum += x
			}
		}
	}
	if last < 0 {
		return nil
	}
	d := divisor(&v.records[last])
	if !finite(d) || d == 0 || !finite(sum/d) {
		return nil
	}
	return ptr(sum / d)
}

// maximum is taken over the open window (st, end).
func (v *view) maximum(field func(*domain.RunRecord) float64, st, end float64) *float64 {
	best := math.Inf(-1)
	found := false
	for i := range v.records {
		h := v.hours[i]
		if h <= st || h >= end {
			continue
		}
		x := field(&v.records[i])
		if !finite(x) {
			continue
		}
		if x > best {
			best = x
		}
		found = true
	}
	if !found {
		return nil
	}
	return ptr(best)
}

// mean is taken over [st, end).
func (v *view) mean(field func(*domain.RunRecord) float64, st, end float64) *float64 {
	var sum float64
	var n int
	for i := range v.records {
		h := v.hours[i]
		if h < st || h >= end {
			continue
		}
		x := field(&v.records[i])
		if !finite(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

func ptr(f float64) *float64 { return &f }

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
