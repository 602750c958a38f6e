package response

import (
	"encoding/json"
	"net/http"

	"github.com/saydalia/saydalia/pkg/apperr"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON response.
func Success(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created sends a 201 JSON response.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// Message sends a status code with a bare {"message": ...} body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// FromError converts an application error to its HTTP representation.
// Error bodies carry a single localized message field, intended for direct
// display; no machine-readable code is included.
func FromError(w http.ResponseWriter, err error) {
	Message(w, apperr.StatusOf(err), apperr.MessageOf(err))
}

// ValidationErrors sends a 400 with the generic message and field-level detail.
func ValidationErrors(w http.ResponseWriter, message string, errs map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": message,
		"errors":  errs,
	})
}
