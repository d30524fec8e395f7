// internal/api/status_handlers_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestGetServiceStatus tests GET /api/status
func TestGetServiceStatus(t *testing.T) {
	store, _, handler := setupTestEnvironment(t)
	seedResults(t, store, 2)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var status map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}

	if status["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", status["status"])
	}
	if status["version"] != Version {
		t.Errorf("Expected version %s, got %v", Version, status["version"])
	}

	ledgerInfo, ok := status["ledger"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected ledger section, got %v", status["ledger"])
	}
	if ledgerInfo["count"].(float64) != 2 {
		t.Errorf("Expected ledger count 2, got %v", ledgerInfo["count"])
	}
	if ledgerInfo["capacity"].(float64) != 50 {
		t.Errorf("Expected ledger capacity 50, got %v", ledgerInfo["capacity"])
	}

	scannerInfo, ok := status["scanner"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected scanner section, got %v", status["scanner"])
	}
	if scannerInfo["state"] != "idle" {
		t.Errorf("Expected idle scanner, got %v", scannerInfo["state"])
	}
}

// TestGetHealthCheck tests GET /api/health
func TestGetHealthCheck(t *testing.T) {
	_, _, handler := setupTestEnvironment(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}
	if health["uptime"] == "" {
		t.Errorf("Expected an uptime value")
	}
}
