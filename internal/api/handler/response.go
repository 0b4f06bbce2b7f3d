package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"webhook-etl/internal/pipeline"
)

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// WriteError writes {"error": msg}
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]interface{}{"error": msg})
}

// writeJobError maps the job error taxonomy onto HTTP statuses
func writeJobError(w http.ResponseWriter, err error) {
	var (
		validation  *pipeline.ValidationError
		unsupported *pipeline.UnsupportedOperationError
		notFound    *pipeline.NotFoundError
		running     *pipeline.AlreadyRunningError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &unsupported):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &running):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("❌ Unexpected job error: %v", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
