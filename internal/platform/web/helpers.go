package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// DataResponse is the envelope of every successful API response.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the envelope of a single error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse lists every invalid field of a request.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondData writes payload wrapped in the {"data": ...} envelope.
func RespondData(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	RespondJSON(w, logger, status, DataResponse{Data: payload})
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Error: message})
}
