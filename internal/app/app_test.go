package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/brainpace/brainpace/internal/breakdown"
	"github.com/brainpace/brainpace/internal/config"
	"github.com/gin-gonic/gin"
)

type noopGenerator struct{}

func (noopGenerator) Breakdown(context.Context, breakdown.Request) breakdown.Result {
	return breakdown.Result{Steps: []string{"start"}}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:        18080,
		DatabaseDSN: filepath.Join(t.TempDir(), "app-test.db"),
		Auth:        config.AuthConfig{JWTSecret: "app-test-secret"},
		Quota:       config.QuotaConfig{FreeLimit: 3, PremiumLimit: 30, ResetPollInterval: time.Hour},
	}
}

func TestMigrate(t *testing.T) {
	if err := Migrate(context.Background(), testConfig(t)); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestNewEngineServesRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	comps, err := NewComponents(cfg, noopGenerator{})
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	engine := NewEngine(cfg, comps)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/tasks", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatalf("expected CORS headers on preflight")
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v0/admin/quotas", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected admin routes disabled without token, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestNewEngineAdminWithToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.Auth.AdminToken = "ops"
	comps, err := NewComponents(cfg, noopGenerator{})
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	engine := NewEngine(cfg, comps)

	req := httptest.NewRequest(http.MethodGet, "/v0/admin/quotas", nil)
	req.Header.Set("Authorization", "Bearer ops")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin list 200, got %d", rec.Code)
	}
}
