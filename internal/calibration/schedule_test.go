package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketScheduleSelectsBracketNotNearest(t *testing.T) {
	s, err := NewBracketSchedule([]float64{0.1, 0.2, 0.3, 0.4}, []float64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"below first", 0.05, 10},
		{"on first threshold", 0.1, 20},
		{"inside [0.2, 0.3)", 0.25, 30},
		{"close to next threshold", 0.299, 30},
		{"above last", 0.9, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Select(tt.x)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBracketScheduleKeepsAuthoredOrder(t *testing.T) {
	// a descending pair leaves the middle bracket unreachable
	s, err := NewBracketSchedule([]float64{0.5, 0.2}, []float64{1, 2, 3})
	require.NoError(t, err)

	got, _ := s.Select(0.3)
	assert.Equal(t, 1.0, got)
	got, _ = s.Select(0.6)
	assert.Equal(t, 3.0, got)
}

func TestBracketScheduleOffsetCount(t *testing.T) {
	_, err := NewBracketSchedule([]float64{0.1}, []float64{1})
	assert.Error(t, err)
}

func TestScheduleFirstMatchWins(t *testing.T) {
	s := Schedule{Rules: []Rule{
		{Name: "wide", Match: func(x float64) bool { return x < 1 }, Offset: 1},
		{Name: "narrow", Match: func(x float64) bool { return x < 0.5 }, Offset: 2},
	}}
	got, ok := s.Select(0.1)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got)

	_, ok = s.Select(2)
	assert.False(t, ok)
}

func TestLookupFirstAbove(t *testing.T) {
	l := Lookup{Thresholds: []float64{0.3, 0.1, 0.5}, Offsets: []float64{3, 1, 5}}

	got, ok := l.Select(0.05)
	assert.True(t, ok)
	assert.Equal(t, 3.0, got, "first row in authored order, not the nearest")

	got, ok = l.Select(0.4)
	assert.True(t, ok)
	assert.Equal(t, 5.0, got)

	_, ok = l.Select(0.6)
	assert.False(t, ok)
}

func TestClampIsIdempotent(t *testing.T) {
	for _, x := range []float64{-1, -0.0001, 0, 0.5, 3, math.NaN(), math.Inf(-1)} {
		once := Clamp(x)
		assert.GreaterOrEqual(t, once, 0.0)
		assert.Equal(t, once, Clamp(once))
	}
}
