package exporter

import (
	"time"

	"offgascli/pkg/contracts/domain"
)

func float(f float64) *float64 { return &f }

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		RunID:       "run-1",
		GeneratedAt: time.Date(2023, 10, 30, 9, 0, 0, 0, time.UTC),
		RunStart:    runStart,
		Phases: []domain.PhaseSummary{
			{
				Name:          "Growth",
				Elapsed:       domain.HourRange{Start: 0, End: 24, Unit: "hrs"},
				Stabilization: &domain.Metric{Name: "Stabilization Time", Value: float(1.5), Unit: "hrs"},
				Totals: []domain.Metric{
					{Name: "Total H2 Consumed", Value: float(12.3456789), Unit: "g"},
					{Name: "Total TAG Produced", Value: nil, Unit: "g"},
				},
				MaximumWindow: domain.HourRange{Start: 20, End: 24, Unit: "hrs"},
				Maximums: []domain.Metric{
					{Name: "Max H2 Uptake Rate", Value: float(-42), Unit: "mmol/L/h"},
				},
				Averages: []domain.Metric{
					{Name: "Average RQ", Value: float(0.25), Unit: ""},
				},
			},
			{
				Name:    "Production",
				Elapsed: domain.HourRange{Start: 24, End: 96, Unit: "hrs"},
			},
		},
	}
}
