package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "offgascli/internal/errors"
	"offgascli/internal/operations"
	"offgascli/internal/rates"
	"offgascli/pkg/contracts/domain"
)

var t0 = time.Date(2023, 10, 25, 13, 47, 0, 0, time.UTC)

type fakeRuns struct {
	last *operations.OperationState
}

func (f *fakeRuns) Last() *operations.OperationState { return f.last }

func (f *fakeRuns) GetOperation(id string) (*operations.OperationState, error) {
	if f.last == nil || f.last.ID != id {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return f.last, nil
}

func (f *fakeRuns) ListOperations() []*operations.OperationResponse {
	if f.last == nil {
		return nil
	}
	return []*operations.OperationResponse{f.last.Response()}
}

func completedState(steps int) *operations.OperationState {
	state := operations.NewOperationState(operations.RunRequest{ID: "run-1", RunStart: t0}, t0)
	state.Start(t0)

	buckets := make([]domain.AveragedBucket, steps)
	records := make([]domain.RunRecord, steps)
	for i := range steps {
		at := t0.Add(time.Duration(i) * time.Minute)
		buckets[i] = domain.AveragedBucket{Time: at, Marker: domain.Num(float64(i))}
		records[i] = domain.RunRecord{Time: at, ElapsedHours: domain.Num(float64(i) / 60)}
	}
	state.Data = &operations.RunData{
		Averaged: buckets,
		Derived:  &rates.Result{Records: records},
		Summary:  &domain.Summary{RunID: "run-1", RunStart: t0},
	}
	state.Complete(t0.Add(time.Minute))
	return state
}

func newTestRouter(runs RunSource) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Get("/healthz", NewHealthHandler(runs, logger).HealthCheck)
	r.Mount("/api/v1", NewDataHandler(runs, logger).Routes())
	r.Mount("/api/v1/operations", NewOperationsHandler(runs, logger).Routes())
	return r
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["error_code"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	t.Run("before first run", func(t *testing.T) {
		rec, body := get(t, newTestRouter(&fakeRuns{}), "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
		assert.NotContains(t, body, "run_id")
	})

	t.Run("after a run", func(t *testing.T) {
		_, body := get(t, newTestRouter(&fakeRuns{last: completedState(3)}), "/healthz")
		assert.Equal(t, "run-1", body["run_id"])
		assert.Equal(t, "completed", body["run_status"])
	})
}

func TestDataRoutesWithoutRun(t *testing.T) {
	running := operations.NewOperationState(operations.RunRequest{ID: "run-2"}, t0)
	running.Start(t0)

	for _, src := range []*fakeRuns{{}, {last: running}} {
		h := newTestRouter(src)
		for _, target := range []string{"/api/v1/summary", "/api/v1/averaged", "/api/v1/run", "/api/v1/run/0"} {
			rec, body := get(t, h, target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
			assert.Equal(t, "RUN_NOT_READY", errorCode(body), target)
		}
	}
}

func TestGetSummary(t *testing.T) {
	rec, body := get(t, newTestRouter(&fakeRuns{last: completedState(3)}), "/api/v1/summary")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", body["run_id"])
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestTableRangeFilter(t *testing.T) {
	h := newTestRouter(&fakeRuns{last: completedState(10)})

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount float64
		wantError string
	}{
		{"averaged all", "/api/v1/averaged", http.StatusOK, 10, ""},
		{"run all", "/api/v1/run", http.StatusOK, 10, ""},
		{"inclusive bounds", "/api/v1/run?from=2023-10-25T13:49:00Z&to=2023-10-25T13:52:00Z", http.StatusOK, 4, ""},
		{"from only", "/api/v1/averaged?from=2023-10-25T13:55:00Z", http.StatusOK, 2, ""},
		{"bad from", "/api/v1/run?from=yesterday", http.StatusBadRequest, 0, "INVALID_PARAMETER"},
		{"reversed", "/api/v1/averaged?from=2023-10-25T14:00:00Z&to=2023-10-25T13:00:00Z", http.StatusBadRequest, 0, "INVALID_PARAMETER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, h, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorCode(body))
				return
			}
			assert.Equal(t, "run-1", body["run_id"])
			assert.EqualValues(t, 10, body["total"])
			assert.Equal(t, tt.wantCount, body["count"])
			assert.Len(t, body["rows"], int(tt.wantCount))
		})
	}
}

func TestGetRunRecord(t *testing.T) {
	h := newTestRouter(&fakeRuns{last: completedState(5)})

	rec, body := get(t, h, "/api/v1/run/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2023-10-25T13:49:00Z", body["time"])

	rec, body = get(t, h, "/api/v1/run/5")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	rec, body = get(t, h, "/api/v1/run/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", errorCode(body))
}

func TestOperationsRoutes(t *testing.T) {
	h := newTestRouter(&fakeRuns{last: completedState(2)})

	rec, body := get(t, h, "/api/v1/operations/run-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", body["status"])

	_, body = get(t, h, "/api/v1/operations")
	assert.EqualValues(t, 1, body["count"])

	_, body = get(t, h, "/api/v1/operations/last")
	assert.Equal(t, "run-1", body["id"])

	rec, body = get(t, h, "/api/v1/operations/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestFailedRunMapsCause(t *testing.T) {
	failed := operations.NewOperationState(operations.RunRequest{ID: "run-3"}, t0)
	failed.Start(t0)
	cause := apierrors.NewParsingError("failed to load calibration table", fmt.Errorf("no side rows"))
	failed.Fail(t0, operations.NewExecutionError(operations.StepIDIngest, cause))

	rec, body := get(t, newTestRouter(&fakeRuns{last: failed}), "/api/v1/summary")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(apierrors.ErrTypeParsing), errorCode(body))
}
