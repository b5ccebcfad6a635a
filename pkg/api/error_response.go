package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// WriteError writes err with the status matching its kind.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSONError(w, StatusFromError(err), err.Error())
}

// StatusFromError maps store errors onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownCollection):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrQuerySyntax):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
