package handlers

import (
	"net/http"
	"time"
)

const (
	serviceName    = "Facebook Video Downloader"
	serviceVersion = "2.0.0"
)

// HealthHandler reports static service identity. No side effects.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
		"features": []string{
			"Real Facebook Video Extraction",
			"Multiple Quality Options",
			"Direct Download",
		},
	})
}

// Options handles CORS preflight
func (h *HealthHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
