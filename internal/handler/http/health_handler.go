package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

func (h *HealthHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.handleHealth)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "Product & Order API is running",
		map[string]interface{}{
			"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		}, nil)
}

// NotFound is the fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound,
		fmt.Sprintf("Route %s not found", r.URL.Path), nil, "")
}
