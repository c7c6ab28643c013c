package api

import (
	"context"
	"net/http"
	"time"

	"github.com/starford/virtualta/internal/qaservice"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and detailed status
// endpoints. These are never behind auth.
type HealthHandler struct {
	svc   *qaservice.Service
	index Pinger
	now   func() time.Time
}

// NewHealthHandler creates a HealthHandler. index may be nil when the
// service runs without the SQLite mirror.
func NewHealthHandler(svc *qaservice.Service, index Pinger) *HealthHandler {
	return &HealthHandler{svc: svc, index: index, now: time.Now}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string          `json:"status" example:"healthy"`
	Timestamp  time.Time       `json:"timestamp"`
	DataLoaded bool            `json:"data_loaded"`
	Components map[string]bool `json:"components"`
}

// Health handles GET /health. Status is "degraded" when any component is
// down; the response code stays 200 so the body is always readable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Stats()
	components := map[string]bool{
		"corpus":           st.Ready,
		"answerer":         st.Ready,
		"image_processor":  true,
		"token_calculator": true,
	}
	if h.index != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		components["index"] = h.index.Ping(ctx) == nil
	}

	status := "healthy"
	for _, ok := range components {
		if !ok {
			status = "degraded"
			break
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     status,
		Timestamp:  h.now().UTC(),
		DataLoaded: st.Ready && st.Documents > 0,
		Components: components,
	})
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready: 503 until the first corpus is loaded.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
