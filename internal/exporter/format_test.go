package exporter

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"offgascli/pkg/contracts/domain"
)

func TestCellString(t *testing.T) {
	ts := time.Date(2023, 10, 25, 13, 47, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    cell
		expected string
	}{
		{"defined number", num(domain.Num(123.456)), "123.456"},
		{"fraction", num(domain.Num(2.24)), "2.24"},
		{"negative", num(domain.Num(-0.5)), "-0.5"},
		{"blank", num(domain.Blank()), ""},
		{"undefined", num(domain.NaN()), "NaN"},
		{"nan input", num(domain.Num(math.NaN())), "NaN"},
		{"window index", integer(1008), "1008"},
		{"timestamp", stamp(ts), "2023-10-25 13:47:00"},
		{"zero timestamp", stamp(time.Time{}), ""},
		{"text", textCell("Growth"), "Growth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.String())
		})
	}
}

func TestCellAny(t *testing.T) {
	ts := time.Date(2023, 10, 25, 13, 47, 0, 0, time.UTC)

	assert.Equal(t, 1.5, num(domain.Num(1.5)).Any())
	assert.Nil(t, num(domain.NaN()).Any())
	assert.Nil(t, num(domain.Blank()).Any())
	assert.Equal(t, ts, stamp(ts).Any())
	assert.Nil(t, stamp(time.Time{}).Any())
	assert.Equal(t, "g/g", textCell("g/g").Any())
}
