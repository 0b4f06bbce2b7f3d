package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"webhook-etl/internal/model"
	"webhook-etl/pkg/utils"
)

// ExportResult describes one completed delivery
type ExportResult struct {
	Type        model.DestinationType `json:"type"`
	Path        string                `json:"path"` // URL, file path or recipient list
	RecordCount int                   `json:"record_count"`
	Degraded    bool                  `json:"degraded,omitempty"`
	ExportedAt  time.Time             `json:"exported_at"`
}

// Mailer sends a plain-text notification
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Loader delivers a finished record set to a destination
type Loader struct {
	Client *http.Client
	Mailer Mailer
	Output *utils.OutputManager
}

// NewLoader builds a loader. A nil client means http.DefaultClient; a nil
// mailer or an output manager without a directory puts the email and file
// sinks in log-only mode.
func NewLoader(client *http.Client, mailer Mailer, output *utils.OutputManager) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{Client: client, Mailer: mailer, Output: output}
}

// Load dispatches records by destination type. A nil destination is a no-op.
func (l *Loader) Load(ctx context.Context, jobID string, records []model.GenericRecord, dest *model.Destination) (*ExportResult, error) {
	if dest == nil {
		return nil, nil
	}

	switch dest.Type {
	case model.DestinationWebhook:
		cfg, err := destinationConfig[model.WebhookConfig](dest, true)
		if err != nil {
			return nil, err
		}
		return l.loadWebhook(ctx, records, cfg.HTTPConfig, dest.Credentials)
	case model.DestinationAPI:
		cfg, err := destinationConfig[model.APIConfig](dest, true)
		if err != nil {
			return nil, err
		}
		return l.loadAPI(ctx, records, cfg.HTTPConfig, dest.Credentials)
	case model.DestinationFile:
		cfg, err := destinationConfig[model.FileConfig](dest, false)
		if err != nil {
			return nil, err
		}
		return l.loadFile(jobID, records, cfg)
	case model.DestinationEmail:
		cfg, err := destinationConfig[model.EmailConfig](dest, true)
		if err != nil {
			return nil, err
		}
		return l.loadEmail(ctx, jobID, records, cfg)
	default:
		// database is reserved and never silently succeeds
		return nil, &UnsupportedOperationError{Kind: "destination", Name: string(dest.Type)}
	}
}

// destinationConfig returns the destination's config as T. Without a config
// it returns the zero value unless required is set.
func destinationConfig[T model.DestinationConfig](dest *model.Destination, required bool) (T, error) {
	var zero T
	if dest.Config == nil {
		if required {
			return zero, &ValidationError{Field: "destination.config", Reason: "is required"}
		}
		return zero, nil
	}
	cfg, ok := dest.Config.(T)
	if !ok {
		return zero, configTypeError("destination.config", dest.Config)
	}
	return cfg, nil
}

// loadWebhook sends one request per record, stopping at the first failure
func (l *Loader) loadWebhook(ctx context.Context, records []model.GenericRecord, cfg model.HTTPConfig, creds map[string]string) (*ExportResult, error) {
	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if err := l.send(ctx, cfg, creds, body); err != nil {
			return nil, fmt.Errorf("webhook delivery of record %d/%d failed: %w", i+1, len(records), err)
		}
	}

	log.Printf("📤 Webhook: %d records delivered to %s", len(records), cfg.URL)
	return &ExportResult{Type: model.DestinationWebhook, Path: cfg.URL, RecordCount: len(records), ExportedAt: time.Now()}, nil
}

// loadAPI sends the whole record set as one JSON array
func (l *Loader) loadAPI(ctx context.Context, records []model.GenericRecord, cfg model.HTTPConfig, creds map[string]string) (*ExportResult, error) {
	if records == nil {
		records = []model.GenericRecord{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	if err := l.send(ctx, cfg, creds, body); err != nil {
		return nil, fmt.Errorf("api delivery failed: %w", err)
	}

	log.Printf("📤 API: %d records delivered to %s", len(records), cfg.URL)
	return &ExportResult{Type: model.DestinationAPI, Path: cfg.URL, RecordCount: len(records), ExportedAt: time.Now()}, nil
}

func (l *Loader) send(ctx context.Context, cfg model.HTTPConfig, creds map[string]string, body []byte) error {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	applyCredentials(req, creds)

	resp, err := l.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func applyCredentials(req *http.Request, creds map[string]string) {
	if len(creds) == 0 {
		return
	}
	if token := creds["token"]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if user := creds["username"]; user != "" {
		req.SetBasicAuth(user, creds["password"])
	}
	if key := creds["apiKey"]; key != "" {
		req.Header.Set("X-API-Key", key)
	}
}

// loadFile writes the record set under the job's output directory. Without a
// filename the export goes to <jobID>.json.
func (l *Loader) loadFile(jobID string, records []model.GenericRecord, cfg model.FileConfig) (*ExportResult, error) {
	if cfg.Filename == "" {
		cfg.Filename = jobID + ".json"
	}
	if !l.Output.Enabled() {
		log.Printf("💾 File (log only, no output dir): %d records for %s", len(records), cfg.Filename)
		return &ExportResult{Type: model.DestinationFile, Path: cfg.Filename, RecordCount: len(records), Degraded: true, ExportedAt: time.Now()}, nil
	}

	path, err := l.Output.JobFilePath(jobID, cfg.Filename)
	if err != nil {
		return nil, err
	}

	var count int
	switch utils.FormatOf(path) {
	case utils.FormatCSV:
		count, err = writeCSV(path, records)
	case utils.FormatNDJSON:
		count, err = writeNDJSON(path, records)
	default:
		count, err = writeJSON(path, jobID, records)
	}
	if err != nil {
		return nil, err
	}

	if size, err := utils.FileSize(path); err == nil {
		log.Printf("💾 File: %d records written to %s (%d bytes)", count, path, size)
	}
	return &ExportResult{Type: model.DestinationFile, Path: path, RecordCount: count, ExportedAt: time.Now()}, nil
}

// writeJSON writes records inside an export_info envelope
func writeJSON(path, jobID string, records []model.GenericRecord) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if records == nil {
		records = []model.GenericRecord{}
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":       jobID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(records),
		},
		"data": records,
	}

	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(records), nil
}

func writeNDJSON(path string, records []model.GenericRecord) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for i, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return i, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return len(records), nil
}

// writeCSV writes one row per record with a sorted union of keys as header
func writeCSV(path string, records []model.GenericRecord) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	allKeys := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			allKeys[key] = true
		}
	}
	header := make([]string, 0, len(allKeys))
	for key := range allKeys {
		header = append(header, key)
	}
	sort.Strings(header)

	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	recordCount := 0
	for _, record := range records {
		row := make([]string, len(header))
		for i, key := range header {
			if value, exists := record[key]; exists {
				row[i] = csvCell(value)
			}
		}
		if err := writer.Write(row); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return recordCount, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return recordCount, nil
}

func csvCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}, []interface{}, []model.GenericRecord, model.GenericRecord:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// loadEmail sends a summary of the delivered record count
func (l *Loader) loadEmail(ctx context.Context, jobID string, records []model.GenericRecord, cfg model.EmailConfig) (*ExportResult, error) {
	subject := cfg.Subject
	if subject == "" {
		subject = fmt.Sprintf("ETL job %s completed", jobID)
	}
	body := fmt.Sprintf("ETL job %s processed %d records.\n", jobID, len(records))
	to := strings.Join(cfg.Recipients, ", ")

	if l.Mailer == nil {
		log.Printf("📧 Email (log only, no SMTP): to=%s subject=%q records=%d", to, subject, len(records))
		return &ExportResult{Type: model.DestinationEmail, Path: to, RecordCount: len(records), Degraded: true, ExportedAt: time.Now()}, nil
	}

	if err := l.Mailer.Send(ctx, cfg.Recipients, subject, body); err != nil {
		return nil, fmt.Errorf("email notification failed: %w", err)
	}

	log.Printf("📧 Email: summary of %d records sent to %s", len(records), to)
	return &ExportResult{Type: model.DestinationEmail, Path: to, RecordCount: len(records), ExportedAt: time.Now()}, nil
}
