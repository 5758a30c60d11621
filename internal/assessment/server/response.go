package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/examly/internal/assessment"
)

// ErrCode identifies an API error.
type ErrCode string

const (
	ErrCodeInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrCodeValidation     ErrCode = "VALIDATION_ERROR"
	ErrCodeSelection      ErrCode = "SELECTION_REJECTED"
	ErrCodeNotFound       ErrCode = "NOT_FOUND"
	ErrCodeTokenRequired  ErrCode = "TOKEN_REQUIRED"
	ErrCodeTokenInvalid   ErrCode = "TOKEN_INVALID"
	ErrCodeUnavailable    ErrCode = "UNAVAILABLE"
	ErrCodeInternal       ErrCode = "INTERNAL_ERROR"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code ErrCode, msg string) {
	writeJSON(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: msg}})
}

func writeFields(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Error: ErrorBody{
		Code:    ErrCodeValidation,
		Message: "request validation failed",
		Fields:  fields,
	}})
}

// statusOf maps a service error to its HTTP status and code.
func statusOf(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, assessment.ErrSelectionInvalid):
		return http.StatusUnprocessableEntity, ErrCodeSelection
	case errors.Is(err, assessment.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, assessment.ErrUnauthorized):
		return http.StatusUnauthorized, ErrCodeTokenInvalid
	case errors.Is(err, assessment.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
