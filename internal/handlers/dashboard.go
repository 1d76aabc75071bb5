package handlers

import (
	"net/http"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/services"
)

type DashboardHandler struct {
	Svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_dashboard", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
