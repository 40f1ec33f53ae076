package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
)

// SearchHandler serves TMDB and collection search
type SearchHandler struct {
	search *controllers.SearchController
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *controllers.SearchController, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger,
	}
}

// Routes returns the /search sub-router
func (h *SearchHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Search)
	r.Get("/scopes", h.Scopes)
	return r
}

// Search handles GET /search?q=&scope=&page=&year=&language=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, ok := intParam(r, "page")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "page must be an integer")
		return
	}
	year, ok := intParam(r, "year")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "year must be an integer")
		return
	}

	q := r.URL.Query()
	results, err := h.search.Search(r.Context(), controllers.SearchQuery{
		Query:    q.Get("q"),
		Scope:    q.Get("scope"),
		Page:     page,
		Year:     year,
		Language: q.Get("language"),
	})
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Scopes handles GET /search/scopes
func (h *SearchHandler) Scopes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.search.Scopes())
}
