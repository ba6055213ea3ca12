package align

import (
	"context"
	"errors"
	"fmt"
	"time"

	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

// Channel names shared with the averaged record.
const (
	Moisture          = "moisture"
	SampleFlow        = "sample_flow"
	SamplePressure    = "sample_pressure"
	SampleTemperature = "sample_temperature"
	Oxygen            = "oxygen"
	Nitrogen          = "nitrogen"
	CarbonDioxide     = "carbon_dioxide"
	Hydrogen          = "hydrogen"

	Temperature       = "temperature"
	PH                = "ph"
	OpticalDensity    = "optical_density"
	Agitation         = "agitation"
	DissolvedOxygen   = "dissolved_oxygen"
	Pressure          = "pressure"
	OxygenFlow        = "oxygen_flow"
	AirFlow           = "air_flow"
	CarbonDioxideFlow = "carbon_dioxide_flow"
	BaseTotal         = "base_total"
	HydrogenFlow      = "hydrogen_flow"
)

var ErrNoSpan = errors.New("analyzer table has no span timestamps")

// Config controls how both instruments are aligned.
type Config struct {
	// SpanColumn holds the analyzer timestamps that bound the averaged grid.
	SpanColumn string
	Analyzer   SourceSpec
	Controller SourceSpec
}

// DefaultConfig returns the column layout of the analyzer and controller exports.
func DefaultConfig() Config {
	return Config{
		SpanColumn: "B",
		Analyzer: SourceSpec{
			Name:        "analyzer",
			TimeColumn:  "A",
			LeadRows:    DefaultAnalyzerLeadRows,
			WindowRows:  DefaultWindowRows,
			Side:        timegrid.Left,
			ClockOffset: DefaultAnalyzerClockOffset,
			Channels: []Channel{
				{Moisture, "C"},
				{SampleFlow, "D"},
				{SamplePressure, "E"},
				{SampleTemperature, "F"},
				{Oxygen, "G"},
				{Nitrogen, "H"},
				{CarbonDioxide, "L"},
				{Hydrogen, "M"},
			},
		},
		Controller: SourceSpec{
			Name:       "controller",
			TimeColumn: "A",
			WindowRows: DefaultWindowRows,
			Side:       timegrid.Right,
			Channels: []Channel{
				{Temperature, "E"},
				{PH, "G"},
				{OpticalDensity, "I"},
				{Agitation, "K"},
				{DissolvedOxygen, "M"},
				{Pressure, "P"},
				{OxygenFlow, "Q"},
				{AirFlow, "T"},
				{CarbonDioxideFlow, "U"},
				{BaseTotal, "R"},
				{HydrogenFlow, "S"},
				{auxiliary(0), "V"},
				{auxiliary(1), "W"},
				{auxiliary(2), "X"},
				{auxiliary(3), "Y"},
				{auxiliary(4), "Z"},
				{auxiliary(5), "AA"},
				{auxiliary(6), "AB"},
				{auxiliary(7), "AC"},
				{auxiliary(8), "AD"},
				{auxiliary(9), "AE"},
				{auxiliary(10), "AF"},
				{auxiliary(11), "AG"},
			},
		},
	}
}

func auxiliary(i int) string { return fmt.Sprintf("auxiliary_%02d", i+1) }

// SpanGrid builds the averaged grid from the first and last defined analyzer
// span timestamps.
func SpanGrid(analyzer *domain.SourceTable, column string) (timegrid.Grid, error) {
	times, err := analyzer.Times(column)
	if err != nil {
		return nil, err
	}
	var first, last time.Time
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		if first.IsZero() {
			first = t
		}
		last = t
	}
	if first.IsZero() {
		return nil, ErrNoSpan
	}
	return timegrid.NewSpanGrid(first, last)
}

// BuildAveraged aligns both instruments onto the analyzer span grid.
func (a *Aligner) BuildAveraged(ctx context.Context, analyzer, controller *domain.SourceTable, cfg Config) ([]domain.AveragedBucket, error) {
	grid, err := SpanGrid(analyzer, cfg.SpanColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to build averaged grid: %w", err)
	}

	an, err := a.Align(ctx, grid, analyzer, cfg.Analyzer)
	if err != nil {
		return nil, err
	}
	ct, err := a.Align(ctx, grid, controller, cfg.Controller)
	if err != nil {
		return nil, err
	}

	markerTimes, err := analyzer.Times(cfg.Analyzer.TimeColumn)
	if err != nil {
		return nil, err
	}
	markers := Markers(grid, markerTimes)

	buckets := make([]domain.AveragedBucket, len(grid))
	for i := range grid {
		b := &buckets[i]
		b.Marker = markers[i]
		b.Time = grid[i]
		b.SourceClock = an.Clock[i]
		b.AnalyzerWindow = an.Windows[i]
		b.ControllerWindow = ct.Windows[i]
		b.Analyzer = analyzerChannels(an.Means[i], cfg.Analyzer)
		b.Controller = controllerChannels(ct.Means[i], cfg.Controller)
	}

	carried := CarryForward(grid, markers, carrySources(buckets))
	for i := range buckets {
		c := &buckets[i].Carry
		c.Pressure = carried[0][i]
		c.Nitrogen = carried[1][i]
		c.CarbonDioxide = carried[2][i]
		c.WindowStart = carried[3][i]
		c.WindowEnd = carried[4][i]
		c.Temperature = carried[5][i]
		c.Biomass = carried[6][i]
		c.LipidPercent = carried[7][i]
	}

	a.logger.InfoContext(ctx, "averaged grid built",
		"steps", len(buckets),
		"start", grid[0],
		"end", grid[len(grid)-1])

	return buckets, nil
}

// carrySources lists, per carried field, the bucket values it copies from.
func carrySources(buckets []domain.AveragedBucket) [][]domain.Value {
	pick := func(fn func(b *domain.AveragedBucket) domain.Value) []domain.Value {
		out := make([]domain.Value, len(buckets))
		for i := range buckets {
			out[i] = fn(&buckets[i])
		}
		return out
	}
	return [][]domain.Value{
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Analyzer.SamplePressure }),
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Analyzer.Nitrogen }),
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Analyzer.CarbonDioxide }),
		pick(func(b *domain.AveragedBucket) domain.Value { return domain.Num(float64(b.AnalyzerWindow.Lower)) }),
		pick(func(b *domain.AveragedBucket) domain.Value { return domain.Num(float64(b.AnalyzerWindow.Upper)) }),
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Controller.Temperature }),
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Controller.OpticalDensity }),
		pick(func(b *domain.AveragedBucket) domain.Value { return b.Analyzer.SamplePressure }),
	}
}

func analyzerChannels(means []domain.Value, spec SourceSpec) domain.AnalyzerChannels {
	get := byName(means, spec)
	return domain.AnalyzerChannels{
		Moisture:          get(Moisture),
		SampleFlow:        get(SampleFlow),
		SamplePressure:    get(SamplePressure),
		SampleTemperature: get(SampleTemperature),
		Oxygen:            get(Oxygen),
		Nitrogen:          get(Nitrogen),
		CarbonDioxide:     get(CarbonDioxide),
		Hydrogen:          get(Hydrogen),
	}
}

func controllerChannels(means []domain.Value, spec SourceSpec) domain.ControllerChannels {
	get := byName(means, spec)
	c := domain.ControllerChannels{
		Temperature:       get(Temperature),
		PH:                get(PH),
		OpticalDensity:    get(OpticalDensity),
		Agitation:         get(Agitation),
		DissolvedOxygen:   get(DissolvedOxygen),
		Pressure:          get(Pressure),
		OxygenFlow:        get(OxygenFlow),
		AirFlow:           get(AirFlow),
		CarbonDioxideFlow: get(CarbonDioxideFlow),
		BaseTotal:         get(BaseTotal),
		HydrogenFlow:      get(HydrogenFlow),
	}
	for i := range c.Auxiliary {
		c.Auxiliary[i] = get(auxiliary(i))
	}
	return c
}

// byName looks up a mean by channel name; unknown channels are NaN.
func byName(means []domain.Value, spec SourceSpec) func(string) domain.Value {
	return func(name string) domain.Value {
		for ci, ch := range spec.Channels {
			if ch.Name == name && ci < len(means) {
				return means[ci]
			}
		}
		return domain.NaN()
	}
}
