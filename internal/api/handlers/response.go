package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/controllers"
)

// maxBodyBytes caps request bodies; inbox pastes are the largest payloads
const maxBodyBytes = 1 << 20

// Response is the envelope of every API reply
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeSearchUnavailable = "search_unavailable"
	CodeInternal          = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Status: "ok",
		Data:   data,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Status: "error",
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// writeControllerError maps controller errors onto HTTP statuses.
// Unexpected errors are logged and reported without detail.
func writeControllerError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, controllers.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "resource not found")
	case errors.Is(err, controllers.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, controllers.ErrSearchUnavailable):
		writeError(w, http.StatusServiceUnavailable, CodeSearchUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// readJSON decodes the request body into dst, rejecting unknown fields
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// decodeBody reads the JSON body or answers 400
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// boolParam parses an optional boolean query parameter
func boolParam(r *http.Request, name string) (*bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
