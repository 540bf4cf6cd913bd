package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"fbgrab/config"
	"fbgrab/handlers"
	"fbgrab/models"
	"fbgrab/services/resolver"
)

func newTestRouter() *mux.Router {
	r := mux.NewRouter()
	Register(r,
		handlers.NewVideoDetailsHandler(resolver.NewService(resolver.Config{}, nil)),
		handlers.NewDownloadHandler(config.RelaySettings{}, nil),
		handlers.NewHealthHandler(),
	)
	return r
}

func TestUnknownEndpointReturnsJSON404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var envelope models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Success || envelope.Error != "Endpoint not found" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestHealthRouteServesThroughRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/video-details", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Fatalf("unexpected allow methods: %q", got)
	}
}

func TestRequestIDPreserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected request id preserved, got %q", got)
	}
}
