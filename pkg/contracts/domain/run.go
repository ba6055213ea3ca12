package domain

import "time"

// Species holds one value per tracked gas.
type Species struct {
	Hydrogen      Value `json:"hydrogen"`
	CarbonDioxide Value `json:"carbon_dioxide"`
	Oxygen        Value `json:"oxygen"`
}

// Map applies fn to every gas.
func (s Species) Map(fn func(Value) Value) Species {
	return Species{Hydrogen: fn(s.Hydrogen), CarbonDioxide: fn(s.CarbonDioxide), Oxygen: fn(s.Oxygen)}
}

// Gas identifies one member of Species.
type Gas int

const (
	Hydrogen Gas = iota
	CarbonDioxide
	Oxygen
)

// Gases lists the gases in column order.
var Gases = []Gas{Hydrogen, CarbonDioxide, Oxygen}

func (g Gas) String() string {
	switch g {
	case Hydrogen:
		return "hydrogen"
	case CarbonDioxide:
		return "carbon_dioxide"
	case Oxygen:
		return "oxygen"
	}
	return "unknown"
}

// Get returns the value for gas g.
func (s Species) Get(g Gas) Value {
	switch g {
	case Hydrogen:
		return s.Hydrogen
	case CarbonDioxide:
		return s.CarbonDioxide
	default:
		return s.Oxygen
	}
}

// Set replaces the value for gas g.
func (s *Species) Set(g Gas, v Value) {
	switch g {
	case Hydrogen:
		s.Hydrogen = v
	case CarbonDioxide:
		s.CarbonDioxide = v
	default:
		s.Oxygen = v
	}
}

// RunRecord is one step of the daily run grid with every derived channel.
type RunRecord struct {
	Start        Value            `json:"start"`
	Time         time.Time        `json:"time"`
	ElapsedHours Value            `json:"elapsed_hours"`
	Analyzer     AnalyzerChannels `json:"analyzer"`

	// Corrected fractions and the inert remainder.
	Fraction  Species `json:"fraction"`
	Remainder Value   `json:"remainder"`

	TotalFlow Value   `json:"total_flow"`
	FlowScale Value   `json:"flow_scale"`
	Flow      Species `json:"flow"`
	InertFlow Value   `json:"inert_flow"`
	Outflow   Species `json:"outflow"`

	Inbound  Species `json:"inbound"`
	Outbound Species `json:"outbound"`

	Rate           Species `json:"rate"`
	WindowStart    Value   `json:"window_start"`
	Nitrogen       Value   `json:"nitrogen"`
	WorkingVolume  Value   `json:"working_volume"`
	VolumetricRate Species `json:"volumetric_rate"`
	MolarRate      Species `json:"molar_rate"`
	SpecificRate   Species `json:"specific_rate"`
	UptakeRatio    Value   `json:"uptake_ratio"`

	Biomass Value `json:"biomass"`
	Lipid   Value `json:"lipid"`

	StepTotal       Species `json:"step_total"`
	CumulativeTotal Species `json:"cumulative_total"`

	Agitation           Value `json:"agitation"`
	DissolvedOxygen     Value `json:"dissolved_oxygen"`
	OxygenCurve         Value `json:"oxygen_curve"`
	SuperficialVelocity Value `json:"superficial_velocity"`
	OxygenTransfer      Value `json:"oxygen_transfer"`
	Productivity        Value `json:"productivity"`
}
