package handler

import (
	"context"
	"net/http"

	"github.com/cmdstash/cmdstash/internal/api/response"
)

// DBPinger verifies database connectivity for the health endpoint.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

type healthData struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	response.JSON(w, http.StatusOK, healthData{
		Status:  status,
		Version: h.version,
	})
}
