package calibration

import (
	"math"

	"offgascli/pkg/contracts/domain"
)

// Stoichiometric weights applied to the corrected carbon dioxide and oxygen
// fractions when correcting hydrogen.
const (
	CarbonDioxideWeight = 9.404
	OxygenWeight        = -0.818
)

// Reading holds the raw analyzer percentages for one run step.
type Reading struct {
	Hydrogen      domain.Value
	CarbonDioxide domain.Value
	Oxygen        domain.Value
	Moisture      domain.Value
}

// Correction is the corrected composition for one step.
type Correction struct {
	Fraction  domain.Species
	Remainder domain.Value
	// Unmatched lists the gases whose breakpoint lookup found no row; they
	// were corrected with a zero offset.
	Unmatched []domain.Gas
}

// Corrector applies a calibration table.
type Corrector struct {
	table Table
}

func NewCorrector(table Table) *Corrector {
	return &Corrector{table: table}
}

// Correct converts raw percentages to clamped fractions. A missing raw input
// makes that fraction exactly 0.
func (c *Corrector) Correct(r Reading) Correction {
	var out Correction

	co2 := 0.0
	if r.CarbonDioxide.IsDefined() {
		x := r.CarbonDioxide.Float() / 100
		off, ok := c.table.CarbonDioxide.Select(x)
		if !ok {
			out.Unmatched = append(out.Unmatched, domain.CarbonDioxide)
		}
		co2 = Clamp(x - off)
	}

	o2 := 0.0
	if r.Oxygen.IsDefined() && r.Moisture.IsDefined() {
		x := r.Oxygen.Float() / 100
		off, ok := c.table.Oxygen.Select(x)
		if !ok {
			out.Unmatched = append(out.Unmatched, domain.Oxygen)
		}
		o2 = Clamp(finiteOrZero(x/(1-r.Moisture.Float()/100)) - off)
	}

	h2 := 0.0
	if r.Hydrogen.IsDefined() {
		k := r.Hydrogen.Float()
		off, ok := c.table.Hydrogen.Select(k / 100)
		if !ok {
			out.Unmatched = append(out.Unmatched, domain.Hydrogen)
		}
		h2 = Clamp((k+CarbonDioxideWeight*co2+OxygenWeight*o2)/100 - off)
	}

	out.Fraction = domain.Species{
		Hydrogen:      domain.Num(h2),
		CarbonDioxide: domain.Num(co2),
		Oxygen:        domain.Num(o2),
	}
	out.Remainder = domain.Num(1 - (h2 + co2 + o2))
	return out
}

// Flows scales each fraction, and the remainder, by totalFlow/remainder. A
// zero or non-finite scale makes every flow 0.
func Flows(c Correction, totalFlow float64) (scale domain.Value, flow domain.Species, inert domain.Value) {
	q := 0.0
	if rem := c.Remainder.Float(); rem != 0 {
		q = finiteOrZero(totalFlow / rem)
	}
	scale = domain.Num(q)
	flow = c.Fraction.Map(func(v domain.Value) domain.Value { return domain.Num(q * v.Float()) })
	inert = domain.Num(q * c.Remainder.Float())
	return scale, flow, inert
}

// finiteOrZero maps NaN and ±Inf to 0.
func finiteOrZero(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
