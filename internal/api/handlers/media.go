package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/models"
)

// MaxCarouselLimit bounds the carousel limit query parameter
const MaxCarouselLimit = 20

// MediaHandler serves the collection endpoints
type MediaHandler struct {
	collection    *controllers.CollectionController
	carouselLimit int
	logger        *logrus.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(collection *controllers.CollectionController, carouselLimit int, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{
		collection:    collection,
		carouselLimit: carouselLimit,
		logger:        logger,
	}
}

// MutationResponse reports whether a mutation callback changed anything
type MutationResponse struct {
	Applied bool `json:"applied"`
}

// Routes returns the /media sub-router
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/add", h.AddFromSearch)
	r.Get("/carousel", h.Carousel)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/not-interested", h.NotInterested)
		r.Post("/watch-later", h.WatchLater)
		r.Post("/recommendations", h.AddRecommendation)
		r.Post("/streaming-links", h.AddStreamingLink)
	})
	return r
}

// List handles GET /media
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := intParam(r, "page")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "page must be an integer")
		return
	}
	pageSize, ok := intParam(r, "page_size")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "page_size must be an integer")
		return
	}
	watched, ok := boolParam(r, "watched")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "watched must be a boolean")
		return
	}

	result, err := h.collection.List(r.Context(), controllers.ListQuery{
		Type:     r.URL.Query().Get("type"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     page,
		PageSize: pageSize,
		Watched:  watched,
	})
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Create handles POST /media
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req controllers.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.collection.Create(r.Context(), req)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// AddFromSearch handles POST /media/add
func (h *MediaHandler) AddFromSearch(w http.ResponseWriter, r *http.Request) {
	var req controllers.AddRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, created, err := h.collection.AddFromSearch(r.Context(), req)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, item)
}

// Carousel handles GET /media/carousel
func (h *MediaHandler) Carousel(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit")
	if !ok || limit < 0 || limit > MaxCarouselLimit {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "limit must be between 1 and 20")
		return
	}
	if limit == 0 {
		limit = h.carouselLimit
	}

	items, err := h.collection.Carousel(r.Context(), limit)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /media/{id}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.collection.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PATCH /media/{id}
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req controllers.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.collection.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /media/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.collection.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotInterested handles POST /media/{id}/not-interested.
// Unknown ids answer 200 with applied=false.
func (h *MediaHandler) NotInterested(w http.ResponseWriter, r *http.Request) {
	applied, err := h.collection.MarkNotInterested(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Applied: applied})
}

// WatchLater handles POST /media/{id}/watch-later
func (h *MediaHandler) WatchLater(w http.ResponseWriter, r *http.Request) {
	applied, err := h.collection.DeferInterest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Applied: applied})
}

// AddRecommendation handles POST /media/{id}/recommendations
func (h *MediaHandler) AddRecommendation(w http.ResponseWriter, r *http.Request) {
	var rec models.Recommendation
	if !decodeBody(w, r, &rec) {
		return
	}

	item, err := h.collection.AddRecommendation(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AddStreamingLink handles POST /media/{id}/streaming-links
func (h *MediaHandler) AddStreamingLink(w http.ResponseWriter, r *http.Request) {
	var link models.StreamingLink
	if !decodeBody(w, r, &link) {
		return
	}

	item, err := h.collection.AddStreamingLink(r.Context(), chi.URLParam(r, "id"), link)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
