package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
)

// DashboardHandler serves the home screen rows
type DashboardHandler struct {
	dashboard *controllers.DashboardController
	logger    *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *controllers.DashboardController, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// ServeHTTP handles GET /dashboard
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Dashboard(r.Context())
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
