// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	custom_errors "gibwerk/internal/errors"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError renders err with the status of its kind. Errors
// outside the taxonomy are logged and hidden behind a generic message.
func respondWithServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := custom_errors.HTTPStatus(err)
	var processErr *custom_errors.ProcessError
	if status == http.StatusInternalServerError && !errors.As(err, &processErr) {
		logger.Error("Request failed", "error", err)
		respondWithError(w, status, "Internal server error")
		return
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "error", err)
	}
	respondWithError(w, status, err.Error())
}
