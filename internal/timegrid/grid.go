// Package timegrid builds the uniform one-minute grids that every aligned and
// derived table is keyed on, plus the searches and joins used against them.
package timegrid

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Step is the spacing between consecutive grid timestamps.
const Step = time.Minute

var (
	ErrEmptyGrid     = errors.New("grid has no steps")
	ErrInvalidSpan   = errors.New("grid end precedes start")
	ErrIrregularGrid = errors.New("grid is not a gap-free one-minute sequence")
)

// Grid is a strictly increasing, gap-free sequence of one-minute timestamps.
type Grid []time.Time

// NewSpanGrid covers start..end with ceil(duration in minutes)+1 steps.
func NewSpanGrid(start, end time.Time) (Grid, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrEmptyGrid
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", ErrInvalidSpan, end, start)
	}
	n := int(math.Ceil(end.Sub(start).Minutes())) + 1
	return build(start, n), nil
}

// NewDayGrid covers start through 23:59 of the same calendar day.
func NewDayGrid(start time.Time) (Grid, error) {
	if start.IsZero() {
		return nil, ErrEmptyGrid
	}
	y, m, d := start.Date()
	end := time.Date(y, m, d, 23, 59, 0, 0, start.Location())
	if end.Before(start) {
		return nil, fmt.Errorf("%w: run starts after %s", ErrInvalidSpan, end.Format("15:04"))
	}
	n := int(end.Sub(start)/Step) + 1
	return build(start, n), nil
}

func build(start time.Time, n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = start.Add(time.Duration(i) * Step)
	}
	return g
}

// Validate checks the grid invariant.
func (g Grid) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGrid
	}
	for i := 1; i < len(g); i++ {
		if g[i].Sub(g[i-1]) != Step {
			return fmt.Errorf("%w: step %d is %s after step %d", ErrIrregularGrid, i, g[i].Sub(g[i-1]), i-1)
		}
	}
	return nil
}

// Shift returns a copy with every timestamp moved by d.
func (g Grid) Shift(d time.Duration) Grid {
	out := make(Grid, len(g))
	for i, t := range g {
		out[i] = t.Add(d)
	}
	return out
}

// Next returns the timestamp of step i+1, or step i itself on the last step.
func (g Grid) Next(i int) time.Time {
	if i+1 < len(g) {
		return g[i+1]
	}
	return g[len(g)-1]
}

// ElapsedHours returns hours since the first step.
func (g Grid) ElapsedHours() []float64 {
	out := make([]float64, len(g))
	if len(g) == 0 {
		return out
	}
	for i, t := range g {
		out[i] = t.Sub(g[0]).Hours()
	}
	return out
}

// after orders times with the zero time sorting last.
func after(a, t time.Time) bool {
	if a.IsZero() {
		return true
	}
	return a.After(t)
}

// SearchLeft returns the first index i with ts[i] >= t.
func SearchLeft(ts []time.Time, t time.Time) int {
	return sort.Search(len(ts), func(i int) bool {
		return after(ts[i], t) || ts[i].Equal(t)
	})
}

// SearchRight returns the first index i with ts[i] > t.
func SearchRight(ts []time.Time, t time.Time) int {
	return sort.Search(len(ts), func(i int) bool {
		return after(ts[i], t)
	})
}

// Side selects the tie-break of a search.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Search dispatches on side.
func Search(ts []time.Time, t time.Time, side Side) int {
	if side == Right {
		return SearchRight(ts, t)
	}
	return SearchLeft(ts, t)
}
