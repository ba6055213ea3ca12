package rates

import (
	"math"

	"offgascli/pkg/contracts/domain"
)

// LaggedDifference returns (out[i] - in[i+lag]) * scale, falling back to
// out[i] * scale on the trailing steps where i+lag is past the end.
func LaggedDifference(out, in []float64, lag int, scale float64) []float64 {
	res := make([]float64, len(out))
	last := len(out) - 1
	for i := range out {
		if i <= last-lag {
			res[i] = (out[i] - in[i+lag]) * scale
		} else {
			res[i] = out[i] * scale
		}
	}
	return res
}

// Clip replaces values outside [-bound, bound] with 0. NaN is also 0.
func Clip(x, bound float64) float64 {
	if x >= -bound && x <= bound {
		return x
	}
	return 0
}

// SafeDivide returns num/den, or 0 when den is undefined or zero.
func SafeDivide(num float64, den domain.Value) float64 {
	if !den.IsDefined() || den.Float() == 0 {
		return 0
	}
	return num / den.Float()
}

// StepIntegral is the rectangular-rule mass for one step. An undefined or
// infinite result counts as 0.
func StepIntegral(rate, volume, dt float64) float64 {
	v := rate * volume * dt
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Cumulative returns the running sum of steps.
func Cumulative(steps []float64) []float64 {
	out := make([]float64, len(steps))
	var sum float64
	for i, s := range steps {
		sum += s
		out[i] = sum
	}
	return out
}

// SumDefined adds the defined values; none defined sums to 0.
func SumDefined(vs ...domain.Value) float64 {
	var sum float64
	for _, v := range vs {
		if v.IsDefined() {
			sum += v.Float()
		}
	}
	return sum
}
