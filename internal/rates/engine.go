package rates

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"offgascli/internal/calibration"
	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

// ProductivitySeedRow is the row of the productivity column that scales every
// productivity value. The column is read before any value is written to it, so
// the seed and therefore every productivity value is undefined. This is a known
// defect: the intended formula is not recoverable and the behavior is kept.
const ProductivitySeedRow = 2

// Stats counts the anomalies absorbed while deriving a run.
type Stats struct {
	Steps         int
	JoinMisses    int
	Unmatched     map[domain.Gas]int
	Clipped       map[domain.Gas]int
	ZeroBiomass   int
	LaggedSteps   int
	FallbackSteps int
}

// Result is the derived run table.
type Result struct {
	Records []domain.RunRecord
	Stats   Stats
}

// Engine derives run records from the averaged grid.
type Engine struct {
	constants Constants
	corrector *calibration.Corrector
	logger    *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(constants Constants, table calibration.Table, logger *slog.Logger) (*Engine, error) {
	if err := constants.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate constants: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		constants: constants,
		corrector: calibration.NewCorrector(table),
		logger:    logger,
	}, nil
}

// run carries the passes' shared state.
type run struct {
	records []domain.RunRecord
	buckets []domain.AveragedBucket
	stats   Stats
}

// Compute derives one record per run grid step.
func (e *Engine) Compute(ctx context.Context, grid timegrid.Grid, averaged []domain.AveragedBucket) (*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run grid: %w", err)
	}

	e.logger.InfoContext(ctx, "deriving run table",
		"steps", len(grid),
		"averaged_steps", len(averaged),
		"lag", e.constants.Lag)

	r := &run{
		records: make([]domain.RunRecord, len(grid)),
		buckets: averaged,
		stats: Stats{
			Steps:     len(grid),
			Unmatched: make(map[domain.Gas]int),
			Clipped:   make(map[domain.Gas]int),
		},
	}

	passes := []struct {
		name string
		fn   func(*run)
	}{
		{"join", func(r *run) { e.join(r, grid) }},
		{"correct", e.correct},
		{"convert", e.convert},
		{"lagged_rates", e.laggedRates},
		{"normalize", e.normalize},
		{"relative", e.relative},
		{"integrate", e.integrate},
		{"oxygen_transfer", e.oxygenTransfer},
		{"productivity", e.productivity},
	}
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.fn(r)
		e.logger.DebugContext(ctx, "pass completed", "pass", p.name)
	}

	e.logger.InfoContext(ctx, "run table derived",
		"steps", r.stats.Steps,
		"join_misses", r.stats.JoinMisses,
		"clipped_hydrogen", r.stats.Clipped[domain.Hydrogen],
		"clipped_carbon_dioxide", r.stats.Clipped[domain.CarbonDioxide],
		"clipped_oxygen", r.stats.Clipped[domain.Oxygen],
		"zero_biomass_steps", r.stats.ZeroBiomass)
	if n := r.stats.Unmatched[domain.Hydrogen] + r.stats.Unmatched[domain.CarbonDioxide] + r.stats.Unmatched[domain.Oxygen]; n > 0 {
		e.logger.WarnContext(ctx, "calibration breakpoints did not match, zero offset used", "steps", n)
	}

	return &Result{Records: r.records, Stats: r.stats}, nil
}

// join seeds the time columns and pulls averaged channels by exact timestamp.
func (e *Engine) join(r *run, grid timegrid.Grid) {
	idx := timegrid.NewIndex(bucketTimes(r.buckets))
	hours := grid.ElapsedHours()

	for i, t := range grid {
		rec := &r.records[i]
		rec.Time = t
		rec.ElapsedHours = domain.Num(hours[i])
		rec.Start = domain.Blank()
		if i == 0 {
			rec.Start = domain.Num(1)
		}

		j, ok := idx.Lookup(t)
		if !ok {
			r.stats.JoinMisses++
			zeroAnalyzer(&rec.Analyzer)
			rec.Outflow = domain.Species{Hydrogen: domain.NaN(), CarbonDioxide: domain.NaN(), Oxygen: domain.NaN()}
			rec.WindowStart = domain.Num(0)
			rec.Nitrogen = domain.Num(0)
			rec.Biomass = domain.NaN()
			rec.Lipid = domain.NaN()
			rec.Agitation = domain.NaN()
			rec.DissolvedOxygen = domain.NaN()
			continue
		}
		b := &r.buckets[j]

		rec.Analyzer = b.Analyzer
		rec.Outflow = domain.Species{
			Hydrogen:      b.Controller.HydrogenFlow,
			CarbonDioxide: b.Controller.CarbonDioxideFlow,
			Oxygen:        b.Controller.OxygenFlow,
		}
		rec.WindowStart = b.Carry.WindowStart
		rec.Nitrogen = b.Carry.Nitrogen
		rec.Biomass = domain.NaNIfMissing(b.Carry.Biomass)
		rec.Lipid = domain.Num(rec.Biomass.Float() * b.Carry.LipidPercent.Float() / 100)
		rec.Agitation = domain.NaNIfMissing(b.Controller.Agitation)
		rec.DissolvedOxygen = domain.NaNIfMissing(b.Controller.DissolvedOxygen)
	}
}

func bucketTimes(buckets []domain.AveragedBucket) []time.Time {
	out := make([]time.Time, len(buckets))
	for i := range buckets {
		out[i] = buckets[i].Time
	}
	return out
}

func zeroAnalyzer(a *domain.AnalyzerChannels) {
	zero := domain.Num(0)
	*a = domain.AnalyzerChannels{
		Moisture: zero, SampleFlow: zero, SamplePressure: zero, SampleTemperature: zero,
		Oxygen: zero, Nitrogen: zero, CarbonDioxide: zero, Hydrogen: zero,
	}
}

// correct fills fractions, remainder and flows.
func (e *Engine) correct(r *run) {
	for i := range r.records {
		rec := &r.records[i]
		c := e.corrector.Correct(calibration.Reading{
			Hydrogen:      rec.Analyzer.Hydrogen,
			CarbonDioxide: rec.Analyzer.CarbonDioxide,
			Oxygen:        rec.Analyzer.Oxygen,
			Moisture:      rec.Analyzer.Moisture,
		})
		for _, g := range c.Unmatched {
			r.stats.Unmatched[g]++
		}
		rec.Fraction = c.Fraction
		rec.Remainder = c.Remainder
		rec.TotalFlow = domain.Num(e.constants.TotalFlow)
		rec.FlowScale, rec.Flow, rec.InertFlow = calibration.Flows(c, e.constants.TotalFlow)
	}
}

// convert turns volumetric flows into per-species molar flows.
func (e *Engine) convert(r *run) {
	for i := range r.records {
		rec := &r.records[i]
		for _, g := range domain.Gases {
			rec.Inbound.Set(g, domain.Num(rec.Flow.Get(g).Float()*e.constants.Inbound.Get(g)))
			rec.Outbound.Set(g, domain.Num(rec.Outflow.Get(g).Float()*e.constants.Outbound.Get(g)))
		}
	}
}

// laggedRates differences outbound against inbound Lag steps ahead.
func (e *Engine) laggedRates(r *run) {
	n := len(r.records)
	for _, g := range domain.Gases {
		out := make([]float64, n)
		in := make([]float64, n)
		for i := range r.records {
			out[i] = r.records[i].Outbound.Get(g).Float()
			in[i] = r.records[i].Inbound.Get(g).Float()
		}
		rate := LaggedDifference(out, in, e.constants.Lag, e.constants.MinutesPerHour)
		for i := range r.records {
			r.records[i].Rate.Set(g, domain.Num(rate[i]))
		}
	}
	r.stats.FallbackSteps = min(n, e.constants.Lag)
	r.stats.LaggedSteps = n - r.stats.FallbackSteps
}

// normalize divides by the working volume, converts to molar scale and clips.
func (e *Engine) normalize(r *run) {
	c := e.constants
	for i := range r.records {
		rec := &r.records[i]
		rec.WorkingVolume = domain.Num(c.WorkingVolume)
		for _, g := range domain.Gases {
			vol := rec.Rate.Get(g).Float() / c.WorkingVolume
			rec.VolumetricRate.Set(g, domain.Num(vol))

			molar := vol / c.MolarMass.Get(g) * 1000
			clipped := Clip(molar, c.ClipBound)
			if clipped != molar {
				r.stats.Clipped[g]++
			}
			rec.MolarRate.Set(g, domain.Num(clipped))
		}
	}
}

// relative divides clipped rates by biomass and forms the uptake ratio.
func (e *Engine) relative(r *run) {
	for i := range r.records {
		rec := &r.records[i]
		if !rec.Biomass.IsDefined() || rec.Biomass.Float() == 0 {
			r.stats.ZeroBiomass++
		}
		for _, g := range domain.Gases {
			rec.SpecificRate.Set(g, domain.Num(SafeDivide(rec.MolarRate.Get(g).Float(), rec.Biomass)))
		}
		rec.UptakeRatio = domain.Num(SafeDivide(-rec.MolarRate.CarbonDioxide.Float(), rec.MolarRate.Oxygen))
	}
}

// integrate computes per-step masses and their running totals.
func (e *Engine) integrate(r *run) {
	for _, g := range domain.Gases {
		steps := make([]float64, len(r.records))
		for i := 1; i < len(r.records); i++ {
			rec := &r.records[i]
			dt := rec.ElapsedHours.Float() - r.records[i-1].ElapsedHours.Float()
			steps[i] = StepIntegral(rec.VolumetricRate.Get(g).Float(), rec.WorkingVolume.Float(), dt)
		}
		cum := Cumulative(steps)
		for i := range r.records {
			r.records[i].StepTotal.Set(g, domain.Num(steps[i]))
			r.records[i].CumulativeTotal.Set(g, domain.Num(cum[i]))
		}
	}
}

// oxygenTransfer fills the saturation curve, gas velocity and transfer columns.
func (e *Engine) oxygenTransfer(r *run) {
	c := e.constants
	for i := range r.records {
		rec := &r.records[i]

		curve := c.CurveSlope*math.Log(rec.Agitation.Float()) + c.CurveIntercept
		if curve < rec.DissolvedOxygen.Float() {
			rec.OxygenCurve = domain.Num(rec.DissolvedOxygen.Float())
		} else {
			rec.OxygenCurve = domain.Num(curve)
		}

		rec.SuperficialVelocity = domain.Num(
			SumDefined(rec.Outflow.Hydrogen, rec.Outflow.CarbonDioxide, rec.Outflow.Oxygen) /
				(1000 * c.MinutesPerHour * c.VesselArea))

		driving := c.OxygenSaturation - rec.DissolvedOxygen.Float()
		rec.OxygenTransfer = domain.Num(SafeDivide(rec.VolumetricRate.Oxygen.Float(), domain.Num(driving)) * 1000)
	}
}

// productivity reproduces the self-referencing formula; see ProductivitySeedRow.
func (e *Engine) productivity(r *run) {
	c := e.constants
	seed := domain.NaN()
	if ProductivitySeedRow < len(r.records) {
		seed = domain.NaNIfMissing(r.records[ProductivitySeedRow].Productivity)
	}
	for i := range r.records {
		rec := &r.records[i]
		v := c.TransferScale *
			(rec.Agitation.Float() / math.Pow(rec.WorkingVolume.Float(), c.TransferExponent)) *
			math.Pow(rec.SuperficialVelocity.Float(), c.TransferExponent) *
			3600 * seed.Float()
		rec.Productivity = domain.Num(v)
	}
}
