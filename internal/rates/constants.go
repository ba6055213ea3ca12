package rates

import (
	"errors"

	"offgascli/pkg/contracts/domain"
)

// Factors holds one constant per gas.
type Factors struct {
	Hydrogen      float64 `yaml:"hydrogen" json:"hydrogen"`
	CarbonDioxide float64 `yaml:"carbon_dioxide" json:"carbon_dioxide"`
	Oxygen        float64 `yaml:"oxygen" json:"oxygen"`
}

// Get returns the factor for g.
func (f Factors) Get(g domain.Gas) float64 {
	switch g {
	case domain.Hydrogen:
		return f.Hydrogen
	case domain.CarbonDioxide:
		return f.CarbonDioxide
	default:
		return f.Oxygen
	}
}

// Constants are the process constants of a run.
type Constants struct {
	// Lag is the forward offset, in steps, of the inbound term of a rate.
	Lag            int     `yaml:"lag" json:"lag"`
	TotalFlow      float64 `yaml:"total_flow" json:"total_flow"`
	WorkingVolume  float64 `yaml:"working_volume" json:"working_volume"`
	ClipBound      float64 `yaml:"clip_bound" json:"clip_bound"`
	MinutesPerHour float64 `yaml:"minutes_per_hour" json:"minutes_per_hour"`
	Inbound        Factors `yaml:"inbound" json:"inbound"`
	Outbound       Factors `yaml:"outbound" json:"outbound"`
	MolarMass      Factors `yaml:"molar_mass" json:"molar_mass"`

	// Oxygen transfer: saturation curve, solubility and vessel geometry.
	CurveSlope       float64 `yaml:"curve_slope" json:"curve_slope"`
	CurveIntercept   float64 `yaml:"curve_intercept" json:"curve_intercept"`
	OxygenSaturation float64 `yaml:"oxygen_saturation" json:"oxygen_saturation"`
	VesselArea       float64 `yaml:"vessel_area" json:"vessel_area"`
	TransferExponent float64 `yaml:"transfer_exponent" json:"transfer_exponent"`
	TransferScale    float64 `yaml:"transfer_scale" json:"transfer_scale"`
}

// DefaultConstants returns the constants of the reference run.
func DefaultConstants() Constants {
	return Constants{
		Lag:            10,
		TotalFlow:      1.5,
		WorkingVolume:  2.24,
		ClipBound:      100,
		MinutesPerHour: 60,
		Inbound:        Factors{Hydrogen: 0.081505, CarbonDioxide: 1.7893, Oxygen: 1.2954},
		Outbound:       Factors{Hydrogen: 0.083732, CarbonDioxide: 1.8389, Oxygen: 1.3309},
		MolarMass:      Factors{Hydrogen: 2.016, CarbonDioxide: 44.01, Oxygen: 31.999},

		CurveSlope:       -1.69,
		CurveIntercept:   8.17,
		OxygenSaturation: 3.5,
		VesselArea:       0.1026,
		TransferExponent: 0.6,
		TransferScale:    0.95,
	}
}

// Validate rejects constants that would make every derived column meaningless.
func (c Constants) Validate() error {
	if c.Lag < 0 {
		return errors.New("lag must be non-negative")
	}
	if c.WorkingVolume == 0 {
		return errors.New("working volume must be non-zero")
	}
	if c.ClipBound <= 0 {
		return errors.New("clip bound must be positive")
	}
	for _, g := range domain.Gases {
		if c.MolarMass.Get(g) == 0 {
			return errors.New("molar masses must be non-zero")
		}
	}
	return nil
}
