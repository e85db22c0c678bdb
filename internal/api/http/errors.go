package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/predict"
)

// APIError is the JSON error body.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeInvalidJSON         = "INVALID_JSON"
	ErrorCodeInvalidFormToken    = "INVALID_FORM_TOKEN"
	ErrorCodeArtifact            = "ARTIFACT_ERROR"
	ErrorCodeSchemaMismatch      = "SCHEMA_MISMATCH"
	ErrorCodeRequestTimeout      = "REQUEST_TIMEOUT"
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// classify maps a pipeline error to a status, code and client message.
func classify(err error) (int, string, string) {
	var verr *features.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, features.ErrValidation):
		return http.StatusBadRequest, ErrorCodeValidation, "Invalid input"
	case errors.Is(err, predict.ErrArtifact):
		return http.StatusInternalServerError, ErrorCodeArtifact, "Model artifacts could not be loaded"
	case errors.Is(err, predict.ErrSchemaMismatch):
		return http.StatusInternalServerError, ErrorCodeSchemaMismatch, "Model does not match the feature schema"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrorCodeRequestTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrorCodeInternalServerError, "Prediction failed"
	}
}

// RespondWithError sends a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, httpStatus int, code, message string, details interface{}) {
	writeJSON(w, httpStatus, APIError{Code: code, Message: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
