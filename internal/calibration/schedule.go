// Package calibration corrects raw analyzer percentages into gas fractions using
// the breakpoints authored in the calibration sheet.
package calibration

import (
	"fmt"
	"math"
)

// Rule is one authored breakpoint: when Match holds, Offset is subtracted.
type Rule struct {
	Name   string
	Match  func(x float64) bool
	Offset float64
}

// Schedule evaluates rules strictly in authored order. The first rule that
// matches wins, even when a later rule's threshold is closer to the reading.
type Schedule struct {
	Rules []Rule
}

// Select returns the offset of the first matching rule.
func (s Schedule) Select(x float64) (float64, bool) {
	for _, r := range s.Rules {
		if r.Match(x) {
			return r.Offset, true
		}
	}
	return 0, false
}

// NewBracketSchedule builds rules for the brackets (-inf, t0), [t0, t1), ...,
// [t_last, +inf). offsets must hold one more entry than thresholds.
func NewBracketSchedule(thresholds, offsets []float64) (Schedule, error) {
	if len(offsets) != len(thresholds)+1 {
		return Schedule{}, fmt.Errorf("bracket schedule needs %d offsets, got %d", len(thresholds)+1, len(offsets))
	}

	rules := make([]Rule, 0, len(offsets))
	for i := 0; i <= len(thresholds); i++ {
		lo, hi := math.Inf(-1), math.Inf(1)
		if i > 0 {
			lo = thresholds[i-1]
		}
		if i < len(thresholds) {
			hi = thresholds[i]
		}
		rules = append(rules, Rule{
			Name:   fmt.Sprintf("[%g, %g)", lo, hi),
			Match:  func(x float64) bool { return lo <= x && x < hi },
			Offset: offsets[i],
		})
	}
	return Schedule{Rules: rules}, nil
}

// Lookup returns the offset paired with the first threshold, in authored row
// order, that exceeds the reading.
type Lookup struct {
	Thresholds []float64
	Offsets    []float64
}

// Select returns the offset of the first row whose threshold exceeds x.
func (l Lookup) Select(x float64) (float64, bool) {
	for i, t := range l.Thresholds {
		if t > x && i < len(l.Offsets) {
			return l.Offsets[i], true
		}
	}
	return 0, false
}

// Clamp maps negative and NaN results to 0.
func Clamp(x float64) float64 {
	if x >= 0 {
		return x
	}
	return 0
}
