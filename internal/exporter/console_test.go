package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	SummaryTable(&buf, sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "Growth  (EFT 0.0000 to 24.0000 hrs)")
	assert.Contains(t, out, "Production  (EFT 24.0000 to 96.0000 hrs)")
	assert.Contains(t, out, "Total H2 Consumed")
	assert.Contains(t, out, "12.3457")
	assert.Contains(t, out, "-42.0000")
	assert.Contains(t, out, "Max (EFT 20.0000-24.0000)")
	assert.Contains(t, out, "Stabilization Time")
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "-", formatMetric(nil))
	assert.Equal(t, "0.2500", formatMetric(float(0.25)))
}
