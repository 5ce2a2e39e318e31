package handler

import (
	"context"
	"net/http"
	"time"

	httputil "restobook/pkg/http"
	"restobook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one backing dependency, e.g. the Mongo or SQLite store.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	checks []ReadinessCheck
	log    *logger.Logger
}

// NewHealthHandler serves /health and /ready. Without checks the service runs
// on the in-memory store and is ready as soon as it is alive.
func NewHealthHandler(log *logger.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if len(h.checks) == 0 {
		h.write(w, "Ready", http.StatusOK, HealthResponse{
			Status: "ready",
			Checks: map[string]string{"storage": "memory"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			h.log.Error("Readiness check failed", "check", c.Name, "error", err)
			resp.Checks[c.Name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = "ok"
	}
	h.write(w, "Ready", status, resp)
}

func (h *HealthHandler) write(w http.ResponseWriter, name string, status int, resp HealthResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", err)
	}
}
