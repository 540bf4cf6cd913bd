package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fbgrab/handlers"
	"fbgrab/models"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an ID for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		log.Printf("[api] %s %s %s request_id=%s", r.RemoteAddr, r.Method, r.URL.Path, id)
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware converts panics into a generic server error so internal
// detail never leaks to the caller. Domain failures carry their own
// envelopes; this is the last resort only.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[api] panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Something went wrong!"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Endpoint not found"})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	videoDetailsHandler *handlers.VideoDetailsHandler,
	downloadHandler *handlers.DownloadHandler,
	healthHandler *handlers.HealthHandler,
) {
	r.Use(recoverMiddleware)
	r.Use(requestIDMiddleware)
	r.NotFoundHandler = recoverMiddleware(http.HandlerFunc(notFoundHandler))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/video-details", videoDetailsHandler.Resolve).Methods(http.MethodPost)
	api.HandleFunc("/video-details", videoDetailsHandler.Options).Methods(http.MethodOptions)

	api.HandleFunc("/download-proxy", downloadHandler.Proxy).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/download-proxy", downloadHandler.Options).Methods(http.MethodOptions)

	api.HandleFunc("/health", healthHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Options).Methods(http.MethodOptions)
}
