package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	NewHealthHandler().Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Status    string   `json:"status"`
		Timestamp string   `json:"timestamp"`
		Service   string   `json:"service"`
		Version   string   `json:"version"`
		Features  []string `json:"features"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "OK" {
		t.Fatalf("unexpected status: %q", payload.Status)
	}
	if payload.Service != "Facebook Video Downloader" || payload.Version != "2.0.0" {
		t.Fatalf("unexpected identity: %s %s", payload.Service, payload.Version)
	}
	if len(payload.Features) != 3 {
		t.Fatalf("unexpected features: %v", payload.Features)
	}
	if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", payload.Timestamp)
	}
}
