package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"linkhub/internal/domain"
	"linkhub/internal/service"
	"linkhub/internal/upload"
)

// Response helpers for consistent API responses

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a successful response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing more to do
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: message,
	})
}

// respondSuccess sends a success response
func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	respondJSON(w, statusCode, SuccessResponse{
		Data:    data,
		Message: message,
	})
}

// respondDomainError maps domain errors onto HTTP statuses. Every public
// operation returns a structured error body; nothing escapes as a panic or
// a bare 500 unless it truly is unexpected.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, upload.ErrTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrNoFile):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// isValidationError groups the bad-input sentinels under one 400 umbrella.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrEmptyTitle,
		domain.ErrEmptyURL,
		domain.ErrInvalidURL,
		domain.ErrInvalidCategory,
		domain.ErrInvalidMode,
		domain.ErrInvalidUsername,
		domain.ErrInvalidBadgeType,
		service.ErrMissingOwner,
		service.ErrMissingLink,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
