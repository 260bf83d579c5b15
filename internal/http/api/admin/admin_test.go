package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/brainpace/brainpace/internal/config"
	"github.com/brainpace/brainpace/internal/db"
	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usage"
	"github.com/gin-gonic/gin"
)

const testAdminToken = "operator-token"

func newAdminEngine(t *testing.T) (*gin.Engine, *store.GormStore, *quota.Gate) {
	engine, st, gate, _ := newAdminEngineWithUsage(t)
	return engine, st, gate
}

func newAdminEngineWithUsage(t *testing.T) (*gin.Engine, *store.GormStore, *quota.Gate, *usage.GormRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(filepath.Join(t.TempDir(), "admin-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	st := store.NewGormStore(conn)
	gate := quota.NewGate(conn, config.QuotaConfig{FreeLimit: 5, PremiumLimit: 100})
	recorder := usage.NewGormRecorder(conn)
	engine := gin.New()
	RegisterAdminRoutes(engine, Deps{DB: conn, Users: st, Gate: gate, Usage: recorder, Token: testAdminToken})
	return engine, st, gate, recorder
}

func adminRequest(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireToken(t *testing.T) {
	engine, _, _ := newAdminEngine(t)
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas", "wrong", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", rec.Code)
	}
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas", testAdminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAdminRoutesDisabledWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterAdminRoutes(engine, Deps{})
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas", testAdminToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected routes to be absent, got %d", rec.Code)
	}
}

func TestAdminSetTier(t *testing.T) {
	engine, st, gate := newAdminEngine(t)
	user, err := st.EnsureUser(context.Background(), "sub-1", "one@example.com")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	path := "/v0/admin/users/" + strconv.FormatUint(user.ID, 10)

	rec := adminRequest(engine, http.MethodPut, path+"/tier", testAdminToken, gin.H{"tier": "gold"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d", rec.Code)
	}
	rec = adminRequest(engine, http.MethodPut, path+"/tier", testAdminToken, gin.H{"tier": "Premium"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["tier"] != string(models.TierPremium) || body["requests_limit"].(float64) != 100 {
		t.Fatalf("unexpected body %v", body)
	}

	row, errLoad := gate.Load(context.Background(), user.ID)
	if errLoad != nil || row.Tier != models.TierPremium {
		t.Fatalf("expected premium row, got %+v err=%v", row, errLoad)
	}

	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/users/9999/quota", testAdminToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/users/abc/quota", testAdminToken, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestAdminListFilters(t *testing.T) {
	engine, st, gate := newAdminEngine(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		user, err := st.EnsureUser(ctx, "sub-"+strconv.Itoa(i), "")
		if err != nil {
			t.Fatalf("ensure user: %v", err)
		}
		if _, errLoad := gate.Load(ctx, user.ID); errLoad != nil {
			t.Fatalf("load quota: %v", errLoad)
		}
		if i == 0 {
			if _, errTier := gate.SetTier(ctx, user.ID, models.TierPremium); errTier != nil {
				t.Fatalf("set tier: %v", errTier)
			}
		}
	}

	rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas?tier=free", testAdminToken, nil)
	var body struct {
		Quotas []map[string]any `json:"quotas"`
		Total  int64            `json:"total"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body.Total != 2 || len(body.Quotas) != 2 {
		t.Fatalf("expected 2 free rows, got %d %+v", rec.Code, body)
	}
	if rec := adminRequest(engine, http.MethodGet, "/v0/admin/quotas?state=nope", testAdminToken, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad state, got %d", rec.Code)
	}
	if rec := adminRequest(engine, http.MethodPost, "/v0/admin/quotas/reset", testAdminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected reset to succeed, got %d", rec.Code)
	}
}

func TestAdminUsageSummary(t *testing.T) {
	engine, st, _, recorder := newAdminEngineWithUsage(t)
	ctx := context.Background()
	user, err := st.EnsureUser(ctx, "usage-sub", "")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	recorder.Record(ctx, usage.Entry{UserID: user.ID, Model: "m", PromptTokens: 30, CompletionTokens: 12})
	path := "/v0/admin/users/" + strconv.FormatUint(user.ID, 10) + "/usage"

	rec := adminRequest(engine, http.MethodGet, path+"?days=7", testAdminToken, nil)
	var body struct {
		Days  int           `json:"days"`
		Usage usage.Summary `json:"usage"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body.Days != 7 || body.Usage.Requests != 1 || body.Usage.PromptTokens != 30 {
		t.Fatalf("unexpected usage response %d %+v", rec.Code, body)
	}
	if rec := adminRequest(engine, http.MethodGet, path+"?days=0", testAdminToken, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for days=0, got %d", rec.Code)
	}
}
