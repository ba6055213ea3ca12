package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"offgascli/pkg/contracts/domain"
)

// AveragedTable lays out the averaged grid as in the AveragedData sheet.
func AveragedTable(buckets []domain.AveragedBucket, seed *domain.SourceTable) *Table {
	b := func(i int) *domain.AveragedBucket { return &buckets[i] }

	cols := []Column{
		col("A", "Marker", func(i int) cell { return num(b(i).Marker) }),
		col("B", "Analyzer Clock", func(i int) cell { return stamp(b(i).SourceClock) }),
		col("C", "Time", func(i int) cell { return stamp(b(i).Time) }),
		col("D", "Moisture", func(i int) cell { return num(b(i).Analyzer.Moisture) }),
		col("E", "Sample Flow", func(i int) cell { return num(b(i).Analyzer.SampleFlow) }),
		col("F", "Sample Pressure", func(i int) cell { return num(b(i).Analyzer.SamplePressure) }),
		col("G", "Sample Temperature", func(i int) cell { return num(b(i).Analyzer.SampleTemperature) }),
		col("H", "O2", func(i int) cell { return num(b(i).Analyzer.Oxygen) }),
		col("I", "N2", func(i int) cell { return num(b(i).Analyzer.Nitrogen) }),
		col("J", "CO2", func(i int) cell { return num(b(i).Analyzer.CarbonDioxide) }),
		col("K", "H2", func(i int) cell { return num(b(i).Analyzer.Hydrogen) }),
		col("L", "Analyzer Window Start", func(i int) cell { return integer(b(i).AnalyzerWindow.Lower) }),
		col("M", "Analyzer Window End", func(i int) cell { return integer(b(i).AnalyzerWindow.Upper) }),
		col("N", "Temperature", func(i int) cell { return num(b(i).Controller.Temperature) }),
		col("O", "pH", func(i int) cell { return num(b(i).Controller.PH) }),
		col("P", "OD", func(i int) cell { return num(b(i).Controller.OpticalDensity) }),
		col("Q", "Agitation", func(i int) cell { return num(b(i).Controller.Agitation) }),
		col("R", "DO", func(i int) cell { return num(b(i).Controller.DissolvedOxygen) }),
		col("S", "Pressure", func(i int) cell { return num(b(i).Controller.Pressure) }),
		col("T", "O2 Flow", func(i int) cell { return num(b(i).Controller.OxygenFlow) }),
		col("U", "Air Flow", func(i int) cell { return num(b(i).Controller.AirFlow) }),
		col("V", "CO2 Flow", func(i int) cell { return num(b(i).Controller.CarbonDioxideFlow) }),
		col("W", "Base Total", func(i int) cell { return num(b(i).Controller.BaseTotal) }),
		col("X", "H2 Flow", func(i int) cell { return num(b(i).Controller.HydrogenFlow) }),
	}
	for k := 0; k < auxiliaryChannels; k++ {
		cols = append(cols, col(letterAt(24+k), fmt.Sprintf("Auxiliary %02d", k+1),
			func(i int) cell { return num(b(i).Controller.Auxiliary[k]) }))
	}
	cols = append(cols,
		col("AK", "Controller Window Start", func(i int) cell { return integer(b(i).ControllerWindow.Lower) }),
		col("AL", "Controller Window End", func(i int) cell { return integer(b(i).ControllerWindow.Upper) }),
		col("AM", "Carried Pressure", func(i int) cell { return num(b(i).Carry.Pressure) }),
		col("AN", "Carried N2", func(i int) cell { return num(b(i).Carry.Nitrogen) }),
		col("AO", "Carried CO2", func(i int) cell { return num(b(i).Carry.CarbonDioxide) }),
		col("AP", "Carried Window Start", func(i int) cell { return num(b(i).Carry.WindowStart) }),
		col("AQ", "Carried Window End", func(i int) cell { return num(b(i).Carry.WindowEnd) }),
		col("AR", "Carried Temperature", func(i int) cell { return num(b(i).Carry.Temperature) }),
		col("AS", "Biomass", func(i int) cell { return num(b(i).Carry.Biomass) }),
		col("AT", "TAG %", func(i int) cell { return num(b(i).Carry.LipidPercent) }),
	)

	return &Table{Name: "averaged", Rows: len(buckets), Columns: cols, Seed: seed}
}

// RunTable lays out the derived run table as in the Run Data sheet. The
// running totals follow the last workbook column.
func RunTable(records []domain.RunRecord, seed *domain.SourceTable) *Table {
	r := func(i int) *domain.RunRecord { return &records[i] }

	species := func(letters [3]string, label string, get func(*domain.RunRecord) domain.Species) []Column {
		out := make([]Column, 0, 3)
		for k, g := range domain.Gases {
			out = append(out, col(letters[k], fmt.Sprintf("%s %s", gasSymbol[g], label),
				func(i int) cell { return num(get(r(i)).Get(g)) }))
		}
		return out
	}

	cols := []Column{
		col("A", "Start", func(i int) cell { return num(r(i).Start) }),
		col("B", "Time", func(i int) cell { return stamp(r(i).Time) }),
		col("C", "EFT", func(i int) cell { return num(r(i).ElapsedHours) }),
		col("D", "Moisture", func(i int) cell { return num(r(i).Analyzer.Moisture) }),
		col("E", "Sample Flow", func(i int) cell { return num(r(i).Analyzer.SampleFlow) }),
		col("F", "Sample Pressure", func(i int) cell { return num(r(i).Analyzer.SamplePressure) }),
		col("G", "Sample Temperature", func(i int) cell { return num(r(i).Analyzer.SampleTemperature) }),
		col("H", "O2", func(i int) cell { return num(r(i).Analyzer.Oxygen) }),
		col("I", "N2", func(i int) cell { return num(r(i).Analyzer.Nitrogen) }),
		col("J", "CO2", func(i int) cell { return num(r(i).Analyzer.CarbonDioxide) }),
		col("K", "H2", func(i int) cell { return num(r(i).Analyzer.Hydrogen) }),
	}
	cols = append(cols, species([3]string{"L", "M", "N"}, "Fraction", func(rec *domain.RunRecord) domain.Species { return rec.Fraction })...)
	cols = append(cols,
		col("O", "Remainder", func(i int) cell { return num(r(i).Remainder) }),
		col("P", "Total Flow", func(i int) cell { return num(r(i).TotalFlow) }),
		col("Q", "Flow Scale", func(i int) cell { return num(r(i).FlowScale) }),
	)
	cols = append(cols, species([3]string{"R", "S", "T"}, "Flow", func(rec *domain.RunRecord) domain.Species { return rec.Flow })...)
	cols = append(cols, col("U", "Inert Flow", func(i int) cell { return num(r(i).InertFlow) }))
	cols = append(cols, species([3]string{"V", "W", "X"}, "Outflow", func(rec *domain.RunRecord) domain.Species { return rec.Outflow })...)
	cols = append(cols, species([3]string{"Y", "Z", "AA"}, "In", func(rec *domain.RunRecord) domain.Species { return rec.Inbound })...)
	cols = append(cols, species([3]string{"AB", "AC", "AD"}, "Out", func(rec *domain.RunRecord) domain.Species { return rec.Outbound })...)
	cols = append(cols, species([3]string{"AE", "AF", "AG"}, "Rate", func(rec *domain.RunRecord) domain.Species { return rec.Rate })...)
	cols = append(cols,
		col("AH", "Window Start", func(i int) cell { return num(r(i).WindowStart) }),
		col("AL", "N2 Carried", func(i int) cell { return num(r(i).Nitrogen) }),
		col("AN", "Working Volume", func(i int) cell { return num(r(i).WorkingVolume) }),
	)
	cols = append(cols, species([3]string{"AO", "AP", "AQ"}, "Volumetric Rate", func(rec *domain.RunRecord) domain.Species { return rec.VolumetricRate })...)
	cols = append(cols, species([3]string{"AR", "AS", "AT"}, "Molar Rate", func(rec *domain.RunRecord) domain.Species { return rec.MolarRate })...)
	cols = append(cols, species([3]string{"AU", "AV", "AW"}, "Specific Rate", func(rec *domain.RunRecord) domain.Species { return rec.SpecificRate })...)
	cols = append(cols,
		col("AX", "RQ", func(i int) cell { return num(r(i).UptakeRatio) }),
		col("BB", "Biomass", func(i int) cell { return num(r(i).Biomass) }),
		col("BC", "TAG", func(i int) cell { return num(r(i).Lipid) }),
	)
	cols = append(cols, species([3]string{"BD", "BE", "BF"}, "Step Total", func(rec *domain.RunRecord) domain.Species { return rec.StepTotal })...)
	cols = append(cols,
		col("BG", "Agitation", func(i int) cell { return num(r(i).Agitation) }),
		col("BH", "DO", func(i int) cell { return num(r(i).DissolvedOxygen) }),
		col("BI", "DO Curve", func(i int) cell { return num(r(i).OxygenCurve) }),
		col("BJ", "Superficial Gas Velocity", func(i int) cell { return num(r(i).SuperficialVelocity) }),
		col("BK", "OTR", func(i int) cell { return num(r(i).OxygenTransfer) }),
		col("BL", "Productivity", func(i int) cell { return num(r(i).Productivity) }),
	)
	cols = append(cols, species([3]string{"BM", "BN", "BO"}, "Cumulative Total", func(rec *domain.RunRecord) domain.Species { return rec.CumulativeTotal })...)

	return &Table{Name: "run", Rows: len(records), Columns: cols, Seed: seed}
}

const auxiliaryChannels = len(domain.ControllerChannels{}.Auxiliary)

var gasSymbol = map[domain.Gas]string{
	domain.Hydrogen:      "H2",
	domain.CarbonDioxide: "CO2",
	domain.Oxygen:        "O2",
}

func letterAt(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}
