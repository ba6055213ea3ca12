package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"offgascli/pkg/contracts"
)

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	RunID     string `json:"run_id,omitempty"`
	RunStatus string `json:"run_status,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	runs   RunSource
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(runs RunSource, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		runs:   runs,
		logger: logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /healthz. The process is healthy whenever it can
// answer; the last run's status is reported alongside.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: contracts.Version}
	if last := h.runs.Last(); last != nil {
		resp.RunID = last.ID
		resp.RunStatus = string(last.GetStatus())
	}
	render.JSON(w, r, resp)
}

// Version handles GET /api/v1/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
