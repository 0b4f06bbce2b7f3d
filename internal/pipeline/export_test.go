package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"webhook-etl/internal/model"
	"webhook-etl/pkg/utils"
)

type fakeMailer struct {
	to      []string
	subject string
	err     error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.to, m.subject = to, subject
	return m.err
}

type hit struct {
	method string
	auth   string
	apiKey string
	body   string
}

func recordingServer(t *testing.T, status int) (*httptest.Server, func() []hit) {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []hit
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits = append(hits, hit{method: r.Method, auth: r.Header.Get("Authorization"), apiKey: r.Header.Get("X-API-Key"), body: string(body)})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []hit {
		mu.Lock()
		defer mu.Unlock()
		return append([]hit(nil), hits...)
	}
}

var twoRecords = []model.GenericRecord{{"id": "1", "n": 1}, {"id": "2", "n": 2}}

func TestLoadWebhookOneCallPerRecord(t *testing.T) {
	srv, hits := recordingServer(t, http.StatusNoContent)
	l := NewLoader(srv.Client(), nil, nil)

	res, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:        model.DestinationWebhook,
		Config:      model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: srv.URL, Method: "put"}},
		Credentials: map[string]string{"token": "abc"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordCount != 2 {
		t.Fatalf("unexpected count %d", res.RecordCount)
	}
	got := hits()
	if len(got) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(got))
	}
	if got[0].method != http.MethodPut || got[0].auth != "Bearer abc" || !strings.Contains(got[0].body, `"id":"1"`) {
		t.Fatalf("unexpected first call %+v", got[0])
	}
}

func TestLoadAPISingleArray(t *testing.T) {
	srv, hits := recordingServer(t, http.StatusOK)
	l := NewLoader(srv.Client(), nil, nil)

	_, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:        model.DestinationAPI,
		Config:      model.APIConfig{HTTPConfig: model.HTTPConfig{URL: srv.URL}},
		Credentials: map[string]string{"username": "u", "password": "p", "apiKey": "k"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := hits()
	if len(got) != 1 {
		t.Fatalf("expected 1 call, got %d", len(got))
	}
	var arr []map[string]interface{}
	if err := json.Unmarshal([]byte(got[0].body), &arr); err != nil || len(arr) != 2 {
		t.Fatalf("expected JSON array of 2, got %q", got[0].body)
	}
	if got[0].method != http.MethodPost || !strings.HasPrefix(got[0].auth, "Basic ") || got[0].apiKey != "k" {
		t.Fatalf("unexpected call %+v", got[0])
	}
}

func TestLoadNon2xxFails(t *testing.T) {
	srv, hits := recordingServer(t, http.StatusInternalServerError)
	l := NewLoader(srv.Client(), nil, nil)

	_, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:   model.DestinationWebhook,
		Config: model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: srv.URL}},
	})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(hits()) != 1 {
		t.Fatalf("delivery must stop at the first failure")
	}
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil, nil, utils.NewOutputManager(dir))

	for _, name := range []string{"out.csv", "out.json", "out.ndjson"} {
		res, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
			Type:   model.DestinationFile,
			Config: model.FileConfig{Filename: name},
		})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Path != filepath.Join(dir, "job1", name) || res.RecordCount != 2 {
			t.Fatalf("%s: unexpected result %+v", name, res)
		}
	}

	f, err := os.Open(filepath.Join(dir, "job1", "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || strings.Join(rows[0], ",") != "id,n" {
		t.Fatalf("unexpected csv %v", rows)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "job1", "out.json"))
	var doc struct {
		ExportInfo map[string]interface{}   `json:"export_info"`
		Data       []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ExportInfo["job_id"] != "job1" || len(doc.Data) != 2 {
		t.Fatalf("unexpected json export %s", data)
	}

	nd, _ := os.ReadFile(filepath.Join(dir, "job1", "out.ndjson"))
	if lines := strings.Split(strings.TrimSpace(string(nd)), "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", len(lines))
	}
}

func TestLoadFileWithoutOutputDirIsLogOnly(t *testing.T) {
	l := NewLoader(nil, nil, nil)
	res, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:   model.DestinationFile,
		Config: model.FileConfig{Filename: "out.json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || res.RecordCount != 2 {
		t.Fatalf("expected degraded result, got %+v", res)
	}
}

func TestLoadEmail(t *testing.T) {
	m := &fakeMailer{}
	l := NewLoader(nil, m, nil)
	_, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:   model.DestinationEmail,
		Config: model.EmailConfig{Recipients: []string{"ops@example.com"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.to) != 1 || !strings.Contains(m.subject, "job1") {
		t.Fatalf("unexpected mail %+v", m)
	}

	m.err = errors.New("smtp down")
	if _, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:   model.DestinationEmail,
		Config: model.EmailConfig{Recipients: []string{"ops@example.com"}},
	}); err == nil {
		t.Fatal("expected mailer error")
	}
}

func TestLoadDatabaseUnsupported(t *testing.T) {
	l := NewLoader(nil, nil, nil)
	_, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{Type: model.DestinationDatabase})
	var unsupported *UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError, got %v", err)
	}
}

func TestLoadNilDestination(t *testing.T) {
	res, err := NewLoader(nil, nil, nil).Load(context.Background(), "job1", twoRecords, nil)
	if res != nil || err != nil {
		t.Fatalf("expected no-op, got %v, %v", res, err)
	}
}

func TestLoadFileDefaultsToJobName(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(nil, nil, utils.NewOutputManager(dir))

	res, err := l.Load(context.Background(), "job7", twoRecords, &model.Destination{Type: model.DestinationFile})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "job7", "job7.json"); res.Path != want || res.RecordCount != 2 {
		t.Fatalf("unexpected result %+v, want path %s", res, want)
	}
}

func TestLoadRejectsPointerConfig(t *testing.T) {
	srv, hits := recordingServer(t, http.StatusOK)
	l := NewLoader(srv.Client(), nil, nil)

	_, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{
		Type:   model.DestinationWebhook,
		Config: &model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: srv.URL}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(hits()) != 0 {
		t.Fatal("nothing may be sent with an unreadable config")
	}

	if _, err := l.Load(context.Background(), "job1", twoRecords, &model.Destination{Type: model.DestinationAPI}); !errors.As(err, &verr) {
		t.Fatalf("missing api config: expected ValidationError, got %v", err)
	}
}
