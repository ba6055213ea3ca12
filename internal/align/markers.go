package align

import (
	"time"

	"offgascli/internal/timegrid"
	"offgascli/pkg/contracts/domain"
)

// Markers flags each grid step against the source timestamps. A step is active
// (1) unless the right-biased search lands exactly one row in, in which case it
// is inactive (blank). An undefined grid timestamp yields NaN.
func Markers(grid timegrid.Grid, source []time.Time) []domain.Value {
	out := make([]domain.Value, len(grid))
	for i, t := range grid {
		if t.IsZero() {
			out[i] = domain.NaN()
			continue
		}
		if timegrid.SearchRight(source, t)-1 != 0 {
			out[i] = domain.Num(1)
		} else {
			out[i] = domain.Blank()
		}
	}
	return out
}

// CarryForward fills carried fields per step. sources is indexed
// [field][step]. A repeated marker copies the fields computed at the first step
// that carried the same marker; a new or undefined marker yields 0, and an
// undefined grid timestamp yields blank.
func CarryForward(grid timegrid.Grid, markers []domain.Value, sources [][]domain.Value) [][]domain.Value {
	out := make([][]domain.Value, len(sources))
	for f := range sources {
		out[f] = make([]domain.Value, len(markers))
	}

	first := make(map[string]int)
	for i, m := range markers {
		if i < len(grid) && grid[i].IsZero() {
			for f := range out {
				out[f][i] = domain.Blank()
			}
			continue
		}

		origin, seen := -1, false
		if !m.IsNaN() {
			origin, seen = first[m.String()]
			if !seen {
				first[m.String()] = i
			}
		}

		for f := range out {
			if seen {
				out[f][i] = sources[f][origin]
			} else {
				out[f][i] = domain.Num(0)
			}
		}
	}
	return out
}
