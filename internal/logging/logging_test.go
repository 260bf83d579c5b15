package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brainpace/brainpace/internal/config"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func TestSetupLevelAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brainpace.log")
	closer, err := Setup(config.LogConfig{Level: "debug", JSON: true, File: path})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer func() {
		_ = closer.Close()
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	}()
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	log.Info("hello")
	info, errStat := os.Stat(path)
	if errStat != nil || info.Size() == 0 {
		t.Fatalf("expected log file to be written, err=%v", errStat)
	}
}

func TestSetupBadLevelFallsBack(t *testing.T) {
	closer, err := Setup(config.LogConfig{Level: "loud"})
	if err != nil || closer != nil {
		t.Fatalf("expected stderr setup, got closer=%v err=%v", closer, err)
	}
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level fallback, got %s", log.GetLevel())
	}
}

func TestGinLoggerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogger())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Fatalf("expected generated request id, header=%q body=%q", generated, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	engine.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected caller request id to be kept, got %q", rec.Header().Get(RequestIDHeader))
	}
}
