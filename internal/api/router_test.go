package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"webhook-etl/internal/model"
	"webhook-etl/internal/pipeline"
	"webhook-etl/internal/store"
	"webhook-etl/pkg/router"
)

func newTestAPI(t *testing.T, secret string) (*router.Router, *pipeline.Manager, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	m := pipeline.NewManager(st, nil)
	return NewRouter(m, st, secret), m, st
}

func do(r http.Handler, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	r, m, st := newTestAPI(t, "")
	ctx := context.Background()
	_ = st.SaveWebhookConfig(ctx, &model.EndpointConfig{ID: "ep1", Name: "ep1", Active: true})
	_ = st.SaveRequest(ctx, &model.CapturedRequest{EndpointID: "ep1", Method: "POST", Path: "/hooks/ep1", Body: "{}"})

	spec := map[string]interface{}{
		"name":       "copy",
		"type":       "full",
		"endpointId": "ep1",
		"transformations": []map[string]interface{}{
			{"type": "enrich", "order": 1, "enabled": true, "config": map[string]interface{}{"additionalFields": map[string]interface{}{"env": "test"}}},
		},
		"destination": map[string]interface{}{"type": "file", "config": map[string]interface{}{"filename": "out.json"}},
	}
	rec := do(r, http.MethodPost, "/api/v1/jobs", spec, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var job model.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}

	rec = do(r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/start", nil, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}

	deadline := time.Now().Add(5 * time.Second)
	for m.IsJobRunning(job.ID) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	rec = do(r, http.MethodGet, "/api/v1/jobs/"+job.ID+"/progress", nil, nil)
	var progress struct {
		Status   model.JobStatus `json:"status"`
		Progress model.Progress  `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatal(err)
	}
	if progress.Status != model.StatusCompleted || progress.Progress.TotalRecords != 1 || progress.Progress.Percentage != 100 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	rec = do(r, http.MethodGet, "/api/v1/jobs?status=completed", nil, nil)
	var list struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Count != 1 {
		t.Fatalf("expected 1 completed job, got %d", list.Count)
	}

	rec = do(r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/cancel", nil, nil)
	var cancelled struct {
		Cancelled bool `json:"cancelled"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &cancelled)
	if rec.Code != http.StatusOK || cancelled.Cancelled {
		t.Fatalf("cancel of a finished job must be a no-op: %d %s", rec.Code, rec.Body)
	}
}

func TestJobErrorsMapToStatuses(t *testing.T) {
	r, _, _ := newTestAPI(t, "")

	rec := do(r, http.MethodPost, "/api/v1/jobs", map[string]interface{}{"name": "x", "type": "stream"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid type: expected 400, got %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"name": "x", "type": "full",
		"filters": map[string]interface{}{"dateRange": map[string]interface{}{"start": "not a date"}},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed date: expected 400, got %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/api/v1/jobs/missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing job: expected 404, got %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/api/v1/jobs/missing/start", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing job start: expected 404, got %d", rec.Code)
	}
}

func TestWebhookEndpoints(t *testing.T) {
	r, _, st := newTestAPI(t, "")

	rec := do(r, http.MethodPost, "/api/v1/webhooks", map[string]interface{}{"name": "orders", "active": true}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create webhook: %d %s", rec.Code, rec.Body)
	}
	var cfg model.EndpointConfig
	_ = json.Unmarshal(rec.Body.Bytes(), &cfg)
	if cfg.ID == "" {
		t.Fatal("expected generated id")
	}

	_ = st.SaveRequest(context.Background(), &model.CapturedRequest{EndpointID: cfg.ID, Method: "POST", Path: "/hooks/" + cfg.ID})
	rec = do(r, http.MethodGet, "/api/v1/webhooks/"+cfg.ID+"/requests?limit=5", nil, nil)
	var reqs struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &reqs)
	if rec.Code != http.StatusOK || reqs.Count != 1 {
		t.Fatalf("list requests: %d %s", rec.Code, rec.Body)
	}

	if rec := do(r, http.MethodGet, "/api/v1/webhooks/nope/requests", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown endpoint: expected 404, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/v1/webhooks/"+cfg.ID+"/requests?limit=-1", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPost, "/api/v1/webhooks", map[string]interface{}{"active": true}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	r, _, _ := newTestAPI(t, secret)

	if rec := do(r, http.MethodGet, "/api/v1/health", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/v1/jobs", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	bad, _ := IssueToken("other-secret", "admin", time.Hour)
	if rec := do(r, http.MethodGet, "/api/v1/jobs", nil, http.Header{"Authorization": {"Bearer " + bad}}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token, got %d", rec.Code)
	}

	expired, _ := IssueToken(secret, "admin", -time.Minute)
	if rec := do(r, http.MethodGet, "/api/v1/jobs", nil, http.Header{"Authorization": {"Bearer " + expired}}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}

	token, err := IssueToken(secret, "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(r, http.MethodGet, "/api/v1/jobs", nil, http.Header{"Authorization": {"Bearer " + token}}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	if _, err := IssueToken("", "admin", time.Hour); err == nil {
		t.Fatal("expected error without a secret")
	}
}
