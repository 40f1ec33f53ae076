package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
)

// StatusHandler handles status requests
type StatusHandler struct {
	collection *controllers.CollectionController
	logger     *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(collection *controllers.CollectionController, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		collection: collection,
		logger:     logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalMedias   int            `json:"total_medias"`
	Watched       int            `json:"watched"`
	NotInterested int            `json:"not_interested"`
	MediasByType  map[string]int `json:"medias_by_type"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collection.Stats(r.Context())
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		TotalMedias:   stats.Total,
		Watched:       stats.Watched,
		NotInterested: stats.NotInterested,
		MediasByType:  stats.ByType,
	})
}
