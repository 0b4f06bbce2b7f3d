package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"webhook-etl/internal/model"
	"webhook-etl/internal/store"
)

func newTestServer(t *testing.T, maxBody int64) (*Server, *store.SQLiteStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "capture.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(st, maxBody), st
}

func TestCaptureStoresRequest(t *testing.T) {
	srv, st := newTestServer(t, 0)
	ctx := context.Background()
	cfg := &model.EndpointConfig{ID: "ep1", Name: "orders", Active: true, ResponseStatus: 202, ResponseBody: `{"ok":true}`}
	if err := st.SaveWebhookConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/hooks/ep1/orders/created?source=shop", strings.NewReader(`{"order":42}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Stripe/1.0")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != 202 {
		t.Fatalf("expected configured status 202, got %d", rec.Code)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	reqs, err := st.GetRequests(ctx, "ep1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected 1 stored request, got %d", len(reqs))
	}
	got := reqs[0]
	if got.Method != "POST" || got.Path != "/hooks/ep1/orders/created" || got.Body != `{"order":42}` {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Query["source"] != "shop" || got.UserAgent != "Stripe/1.0" || got.ContentType != "application/json" || got.Size != 12 {
		t.Fatalf("metadata not captured: %+v", got)
	}
}

func TestCaptureUnknownOrInactiveEndpoint(t *testing.T) {
	srv, st := newTestServer(t, 0)
	_ = st.SaveWebhookConfig(context.Background(), &model.EndpointConfig{ID: "off", Name: "off", Active: false})

	for _, path := range []string{"/hooks/missing", "/hooks/off"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestCaptureBodyLimit(t *testing.T) {
	srv, st := newTestServer(t, 8)
	_ = st.SaveWebhookConfig(context.Background(), &model.EndpointConfig{ID: "ep", Name: "ep", Active: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hooks/ep", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	reqs, _ := st.GetRequests(context.Background(), "ep", 0)
	if len(reqs) != 0 {
		t.Fatalf("oversized request must not be stored")
	}
}

func TestCaptureDefaultResponse(t *testing.T) {
	srv, st := newTestServer(t, 0)
	_ = st.SaveWebhookConfig(context.Background(), &model.EndpointConfig{ID: "ep", Name: "ep", Active: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/hooks/ep", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "requestId") {
		t.Fatalf("expected request id in body, got %q", rec.Body.String())
	}
}
