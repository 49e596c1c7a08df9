package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database"
)

func TestHealthStatus_NoDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	controller := NewHealthController(nil, "test")
	router := gin.New()
	router.GET("/health", controller.Status)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Checks["database"] != "not configured" {
		t.Errorf("expected database check 'not configured', got %q", resp.Checks["database"])
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %q", resp.Version)
	}
}

func TestHealthStatus_WithDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_health.db"
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		db.Close()
		os.Remove(dbPath)
	}()

	controller := NewHealthController(db, "test")
	router := gin.New()
	router.GET("/health", controller.Status)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy status, got %q", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("expected database check ok, got %q", resp.Checks["database"])
	}
}
