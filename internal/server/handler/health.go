package handler

import (
	"net/http"
	"time"
)

// HealthHandler serves the liveness endpoint with basic runtime metadata.
type HealthHandler struct {
	mode      string
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler for the given run mode.
func NewHealthHandler(mode string) *HealthHandler {
	return &HealthHandler{
		mode:      mode,
		startedAt: time.Now().UTC(),
	}
}

// HealthCheck reports the service as alive along with its mode and uptime.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	uptime := int64(time.Since(h.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"service":       "defolio",
		"mode":          h.mode,
		"uptimeSeconds": uptime,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
