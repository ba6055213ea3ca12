package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	var traces bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceWriter = &traces

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "align")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	AddSpanEvent(ctx, "window", map[string]interface{}{"steps": 3, "source": "analyzer"})
	RecordError(ctx, errors.New("boom"))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))
	assert.Contains(t, traces.String(), `"Name":"align"`)
}

func TestOTelDisabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	m, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	m.RecordStep(context.Background(), "align", time.Second, nil)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestPipelineMetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStep(ctx, "derive", 250*time.Millisecond, nil)
	m.RecordStep(ctx, "export", time.Millisecond, errors.New("disk full"))
	m.RecordRun(ctx, nil)
	m.RecordRows(ctx, "run", 613)
	m.RecordAnomalies(ctx, "clipped", "hydrogen", 4)
	m.RecordAnomalies(ctx, "join_miss", "", 0)
	m.RecordHTTPRequest(ctx, http.MethodGet, "/api/v1/summary", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "offgas_step_duration_seconds")
	assert.Contains(t, body, "offgas_step_failures_total")
	assert.Contains(t, body, `offgas_rows_total{`)
	assert.Contains(t, body, `gas="hydrogen"`)
	assert.Contains(t, body, "offgas_build_info")
	assert.Contains(t, body, "go_goroutines")

	path := filepath.Join(t.TempDir(), "offgas.prom")
	require.NoError(t, providers.WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "offgas_runs_total")

	assert.NoError(t, providers.WriteTextfile(""))
}

func TestNilPipelineMetrics(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	m.RecordStep(ctx, "align", time.Second, nil)
	m.RecordRun(ctx, nil)
	m.RecordRows(ctx, "run", 1)
	m.RecordAnomalies(ctx, "clipped", "oxygen", 1)
	m.RecordHTTPRequest(ctx, http.MethodGet, "/", 200, time.Second)
}
