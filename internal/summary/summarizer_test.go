package summary

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/pkg/contracts/domain"
)

var start = time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC)

// hourlyRecords has one record per elapsed hour with unit step totals and a
// molar hydrogen rate equal to the hour.
func hourlyRecords(n int) []domain.RunRecord {
	recs := make([]domain.RunRecord, n)
	for k := range recs {
		one := domain.Num(1)
		recs[k] = domain.RunRecord{
			Time:          start.Add(time.Duration(k) * time.Hour),
			ElapsedHours:  domain.Num(float64(k)),
			Biomass:       domain.Num(2),
			Lipid:         domain.Num(0.5),
			WorkingVolume: domain.Num(2.24),
			StepTotal:     domain.Species{Hydrogen: one, CarbonDioxide: one, Oxygen: one},
			MolarRate:     domain.Species{Hydrogen: domain.Num(float64(k)), CarbonDioxide: one, Oxygen: one},
			SpecificRate:  domain.Species{Hydrogen: one, CarbonDioxide: domain.NaN(), Oxygen: one},
		}
	}
	return recs
}

func value(t *testing.T, ms []domain.Metric, name string) *float64 {
	t.Helper()
	m, ok := domain.FindMetric(ms, name)
	require.True(t, ok, "metric %q", name)
	return m.Value
}

func TestCalculate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	s := NewSummarizer(nil, clock)

	stabilization := 4.0
	phases := []Phase{
		{
			Name:               "Growth",
			Start:              start.Add(2 * time.Hour),
			End:                start.Add(10 * time.Hour),
			StabilizationHours: &stabilization,
		},
		{
			Name:          "Production",
			Start:         start.Add(90 * time.Minute),
			End:           start.Add(100 * time.Hour),
			MaximumWindow: &HourWindow{Start: 2, End: 6},
			IncludeLipid:  true,
		},
	}

	sum, err := s.Calculate(context.Background(), "run-1", hourlyRecords(48), phases)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), sum.GeneratedAt)
	assert.Equal(t, start, sum.RunStart)
	require.Len(t, sum.Phases, 2)

	growth, ok := sum.Phase("Growth")
	require.True(t, ok)
	assert.Equal(t, domain.HourRange{Start: 2, End: 10, Unit: UnitHours}, growth.Elapsed)
	assert.Equal(t, 4.0, *value(t, growth.Totals, "Hydrogen Consumed/Biomass"))
	assert.InDelta(t, 8/2.24, *value(t, growth.Totals, "Oxygen Consumed/Volume"), 1e-12)
	assert.Len(t, growth.Totals, 6)
	require.NotNil(t, growth.Stabilization)

	// default maximum window is the open last hour, which holds no step
	assert.Equal(t, domain.HourRange{Start: 9, End: 10, Unit: UnitHours}, growth.MaximumWindow)
	assert.Nil(t, value(t, growth.Maximums, "Hydrogen Consumption Rate"))

	assert.Equal(t, 1.0, *value(t, growth.Averages, "Hydrogen Consumption/Biomass/Hr"))
	assert.Nil(t, value(t, growth.Averages, "Carbon Dioxide Consumption/Biomass/Hr"))

	prod, ok := sum.Phase("Production")
	require.True(t, ok)
	// 90 minutes rounds up to the 2 hour step, 100 hours clamps to the last step
	assert.Equal(t, 2.0, prod.Elapsed.Start)
	assert.Equal(t, 47.0, prod.Elapsed.End)
	assert.Len(t, prod.Totals, 9)
	assert.Equal(t, 45/0.5, *value(t, prod.Totals, "Carbon Dioxide Consumed/TAG"))
	assert.Equal(t, 5.0, *value(t, prod.Maximums, "Hydrogen Consumption Rate"))
	assert.Nil(t, prod.Stabilization)
}

func TestCalculateZeroDivisorIsNull(t *testing.T) {
	recs := hourlyRecords(12)
	recs[10].Biomass = domain.Num(0)

	sum, err := NewSummarizer(nil, nil).Calculate(context.Background(), "run", recs, []Phase{{
		Name:  "Growth",
		Start: start,
		End:   start.Add(10 * time.Hour),
	}})
	require.NoError(t, err)

	growth, _ := sum.Phase("Growth")
	assert.Nil(t, value(t, growth.Totals, "Hydrogen Consumed/Biomass"))

	data, err := json.Marshal(growth.Totals[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Hydrogen Consumed/Biomass","value":null,"unit":"g/g"}`, string(data))
}

func TestCalculateSkipsInfiniteValues(t *testing.T) {
	recs := hourlyRecords(48)
	recs[5].StepTotal.Hydrogen = domain.Num(math.Inf(-1))
	recs[4].MolarRate.Hydrogen = domain.Num(math.Inf(1))
	recs[8].SpecificRate.Hydrogen = domain.Num(math.Inf(-1))

	sum, err := NewSummarizer(nil, nil).Calculate(context.Background(), "run", recs, []Phase{{
		Name:          "Growth",
		Start:         start.Add(2 * time.Hour),
		End:           start.Add(10 * time.Hour),
		MaximumWindow: &HourWindow{Start: 2, End: 6},
	}})
	require.NoError(t, err)

	growth, ok := sum.Phase("Growth")
	require.True(t, ok)
	assert.Equal(t, 3.5, *value(t, growth.Totals, "Hydrogen Consumed/Biomass"))
	assert.Equal(t, 1.0, *value(t, growth.Averages, "Hydrogen Consumption/Biomass/Hr"))
	assert.Equal(t, 5.0, *value(t, growth.Maximums, "Hydrogen Consumption Rate"))

	_, err = json.Marshal(sum)
	require.NoError(t, err)
}

func TestCalculateErrors(t *testing.T) {
	s := NewSummarizer(nil, nil)
	_, err := s.Calculate(context.Background(), "run", nil, DefaultPhases())
	assert.Error(t, err)

	_, err = s.Calculate(context.Background(), "run", hourlyRecords(3), []Phase{{Name: "bad", Start: start, End: start}})
	assert.Error(t, err)
}

func TestDefaultPhases(t *testing.T) {
	phases := DefaultPhases()
	require.Len(t, phases, 2)
	for _, p := range phases {
		assert.NoError(t, p.Validate())
	}
	assert.True(t, phases[1].IncludeLipid)
	assert.Equal(t, 20.0, *phases[0].StabilizationHours)
}
