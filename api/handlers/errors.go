package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/siialab/signalscope/api/dataset"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// internalError logs the full error and returns a user-safe message. Query
// text, hostnames and driver detail stay in the logs.
func internalError(operation string, err error) string {
	slog.Error(operation, "error", err)
	return operation
}

// respondQueryError maps validation errors to 400 with their own message and
// everything else to a 500 with a stable generic message. Validation errors
// are produced before any store access, so a 500 always means the store.
func respondQueryError(w http.ResponseWriter, operation string, err error) {
	var missing *dataset.MissingParameterError
	var badAgg *dataset.InvalidAggregationError
	var badDate *dataset.InvalidDateError
	var badLabel *dataset.InvalidWeightLabelError

	switch {
	case errors.As(err, &missing),
		errors.As(err, &badAgg),
		errors.As(err, &badDate),
		errors.As(err, &badLabel):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, internalError(operation, err))
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON encoding error", "error", err)
	}
}
