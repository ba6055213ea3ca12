package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "offgascli/internal/errors"
	"offgascli/pkg/contracts/domain"
)

// DataHandler serves the tables of the last completed run
type DataHandler struct {
	runs   RunSource
	logger *slog.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(runs RunSource, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		runs:   runs,
		logger: logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/averaged", h.GetAveraged)
	r.Get("/run", h.GetRun)
	r.Get("/run/{index}", h.GetRunRecord)
	return r
}

// TableResponse is a time-filtered slice of a table
type TableResponse[T any] struct {
	RunID string `json:"run_id"`
	Total int    `json:"total"`
	Count int    `json:"count"`
	Rows  []T    `json:"rows"`
}

// GetSummary handles GET /api/v1/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	_, data, apiErr := completedRun(h.runs)
	if apiErr != nil {
		renderError(w, r, apiErr)
		return
	}
	if data.Summary == nil {
		renderError(w, r, apierrors.ErrRunNotReady)
		return
	}
	render.JSON(w, r, data.Summary)
}

// GetAveraged handles GET /api/v1/averaged?from=&to=
func (h *DataHandler) GetAveraged(w http.ResponseWriter, r *http.Request) {
	state, data, apiErr := completedRun(h.runs)
	if apiErr != nil {
		renderError(w, r, apiErr)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	rows := filterByTime(data.Averaged, from, to, func(b domain.AveragedBucket) time.Time { return b.Time })
	render.JSON(w, r, TableResponse[domain.AveragedBucket]{
		RunID: state.ID,
		Total: len(data.Averaged),
		Count: len(rows),
		Rows:  rows,
	})
}

// GetRun handles GET /api/v1/run?from=&to=
func (h *DataHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	state, data, apiErr := completedRun(h.runs)
	if apiErr != nil {
		renderError(w, r, apiErr)
		return
	}
	if data.Derived == nil {
		renderError(w, r, apierrors.ErrRunNotReady)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	records := data.Derived.Records
	rows := filterByTime(records, from, to, func(rec domain.RunRecord) time.Time { return rec.Time })
	render.JSON(w, r, TableResponse[domain.RunRecord]{
		RunID: state.ID,
		Total: len(records),
		Count: len(rows),
		Rows:  rows,
	})
}

// GetRunRecord handles GET /api/v1/run/{index}
func (h *DataHandler) GetRunRecord(w http.ResponseWriter, r *http.Request) {
	_, data, apiErr := completedRun(h.runs)
	if apiErr != nil {
		renderError(w, r, apiErr)
		return
	}
	if data.Derived == nil {
		renderError(w, r, apierrors.ErrRunNotReady)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		renderError(w, r, apierrors.InvalidParameter("index", err))
		return
	}
	records := data.Derived.Records
	if index < 0 || index >= len(records) {
		h.logger.DebugContext(r.Context(), "run record out of range",
			slog.Int("index", index),
			slog.Int("records", len(records)))
		renderError(w, r, apierrors.NotFoundError(fmt.Sprintf("run record %d", index)))
		return
	}
	render.JSON(w, r, records[index])
}

// parseRange reads the optional RFC 3339 from/to bounds; both are inclusive
func parseRange(r *http.Request) (from, to time.Time, apiErr *apierrors.APIError) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, apierrors.InvalidParameter("from", err)
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, apierrors.InvalidParameter("to", err)
		}
		to = t
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, apierrors.InvalidParameter("to", errors.New("must not be before from"))
	}
	return from, to, nil
}

func filterByTime[T any](rows []T, from, to time.Time, at func(T) time.Time) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		t := at(row)
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if !to.IsZero() && t.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}
