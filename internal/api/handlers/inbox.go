package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
)

// InboxHandler serves the inbox endpoints
type InboxHandler struct {
	inbox  *controllers.InboxController
	logger *logrus.Logger
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inbox *controllers.InboxController, logger *logrus.Logger) *InboxHandler {
	return &InboxHandler{
		inbox:  inbox,
		logger: logger,
	}
}

// CleanupResponse reports how many expired items were removed
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}

// Routes returns the /inbox sub-router
func (h *InboxHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/submit", h.Submit)
	r.Post("/cleanup", h.Cleanup)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/process", h.Process)
	})
	return r
}

// List handles GET /inbox?processed=&limit=
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	processed, ok := boolParam(r, "processed")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "processed must be a boolean")
		return
	}
	limit, ok := intParam(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "limit must be an integer")
		return
	}

	items, err := h.inbox.List(r.Context(), processed, limit)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Submit handles POST /inbox/submit
func (h *InboxHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req controllers.SubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.inbox.Submit(r.Context(), req)
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Get handles GET /inbox/{id}
func (h *InboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.inbox.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /inbox/{id}
func (h *InboxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Process handles POST /inbox/{id}/process
func (h *InboxHandler) Process(w http.ResponseWriter, r *http.Request) {
	result, err := h.inbox.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Cleanup handles POST /inbox/cleanup
func (h *InboxHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.inbox.Cleanup(r.Context())
	if err != nil {
		writeControllerError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{Deleted: deleted})
}
