package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "offgascli/internal/errors"
	"offgascli/internal/infrastructure"
)

// OperationsHandler reports the status of pipeline runs
type OperationsHandler struct {
	runs   RunSource
	logger *slog.Logger
	tracer trace.Tracer
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(runs RunSource, logger *slog.Logger) *OperationsHandler {
	return &OperationsHandler{
		runs:   runs,
		logger: logger.With(slog.String("handler", "operations")),
		tracer: otel.Tracer(infrastructure.MeterName),
	}
}

// Routes returns the operations routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListOperations)
	r.Get("/last", h.GetLastOperation)
	r.Get("/{id}", h.GetOperation)
	return r
}

// ListOperations handles GET /api/v1/operations
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := h.runs.ListOperations()
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	render.JSON(w, r, map[string]any{
		"operations": ops,
		"count":      len(ops),
	})
}

// GetLastOperation handles GET /api/v1/operations/last
func (h *OperationsHandler) GetLastOperation(w http.ResponseWriter, r *http.Request) {
	last := h.runs.Last()
	if last == nil {
		renderError(w, r, apierrors.ErrRunNotReady)
		return
	}
	render.JSON(w, r, last.Response())
}

// GetOperation handles GET /api/v1/operations/{id}
func (h *OperationsHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := h.tracer.Start(r.Context(), "operations.get",
		trace.WithAttributes(attribute.String("operation.id", id)))
	defer span.End()

	state, err := h.runs.GetOperation(id)
	if err != nil {
		h.logger.DebugContext(ctx, "operation lookup failed",
			slog.String("operation_id", id),
			slog.String("error", err.Error()))
		renderError(w, r, apierrors.NotFoundError("operation "+id))
		return
	}
	render.JSON(w, r, state.Response())
}
