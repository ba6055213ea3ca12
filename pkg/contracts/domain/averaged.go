package domain

import "time"

// AnalyzerChannels are the off-gas analyzer readings averaged per grid step.
type AnalyzerChannels struct {
	Moisture          Value `json:"moisture"`
	SampleFlow        Value `json:"sample_flow"`
	SamplePressure    Value `json:"sample_pressure"`
	SampleTemperature Value `json:"sample_temperature"`
	Oxygen            Value `json:"oxygen"`
	Nitrogen          Value `json:"nitrogen"`
	CarbonDioxide     Value `json:"carbon_dioxide"`
	Hydrogen          Value `json:"hydrogen"`
}

// ControllerChannels are the process-control logger readings averaged per grid step.
type ControllerChannels struct {
	Temperature       Value     `json:"temperature"`
	PH                Value     `json:"ph"`
	OpticalDensity    Value     `json:"optical_density"`
	Agitation         Value     `json:"agitation"`
	DissolvedOxygen   Value     `json:"dissolved_oxygen"`
	Pressure          Value     `json:"pressure"`
	OxygenFlow        Value     `json:"oxygen_flow"`
	AirFlow           Value     `json:"air_flow"`
	CarbonDioxideFlow Value     `json:"carbon_dioxide_flow"`
	BaseTotal         Value     `json:"base_total"`
	HydrogenFlow      Value     `json:"hydrogen_flow"`
	Auxiliary         [12]Value `json:"auxiliary"`
}

// CarriedFields are copied from the first bucket that carried the same event
// marker value.
type CarriedFields struct {
	Pressure      Value `json:"pressure"`
	Nitrogen      Value `json:"nitrogen"`
	CarbonDioxide Value `json:"carbon_dioxide"`
	WindowStart   Value `json:"window_start"`
	WindowEnd     Value `json:"window_end"`
	Temperature   Value `json:"temperature"`
	Biomass       Value `json:"biomass"`
	LipidPercent  Value `json:"lipid_percent"`
}

// Window is an inclusive range of source row indices searched for one step.
type Window struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// AveragedBucket is one step of the averaged one-minute grid.
type AveragedBucket struct {
	Marker           Value              `json:"marker"`
	SourceClock      time.Time          `json:"source_clock"`
	Time             time.Time          `json:"time"`
	AnalyzerWindow   Window             `json:"analyzer_window"`
	Analyzer         AnalyzerChannels   `json:"analyzer"`
	ControllerWindow Window             `json:"controller_window"`
	Controller       ControllerChannels `json:"controller"`
	Carry            CarriedFields      `json:"carry"`
}
