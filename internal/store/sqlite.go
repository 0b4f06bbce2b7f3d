package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"webhook-etl/internal/model"
)

// DefaultResponseStatus is answered by endpoints that configure none
const DefaultResponseStatus = 200

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and ensures the schema
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; the capture server and retention loop share it
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the tables and indexes if they do not exist
func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS endpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			response_status INTEGER NOT NULL,
			response_body TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS requests (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			endpoint_id TEXT NOT NULL,
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			headers TEXT,
			body TEXT,
			query_params TEXT,
			received_at DATETIME NOT NULL,
			ip TEXT,
			user_agent TEXT,
			content_type TEXT,
			size INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_endpoint ON requests(endpoint_id, received_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveWebhookConfig inserts or replaces an endpoint config. A missing id is
// generated and timestamps are maintained.
func (s *SQLiteStore) SaveWebhookConfig(ctx context.Context, cfg *model.EndpointConfig) error {
	now := time.Now().UTC()
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.ResponseStatus == 0 {
		cfg.ResponseStatus = DefaultResponseStatus
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO endpoints(id,name,description,response_status,response_body,active,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description,
			response_status=excluded.response_status, response_body=excluded.response_body,
			active=excluded.active, updated_at=excluded.updated_at`,
		cfg.ID, cfg.Name, cfg.Description, cfg.ResponseStatus, cfg.ResponseBody, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save endpoint %s: %w", cfg.ID, err)
	}
	return nil
}

// GetWebhookConfig returns ErrNotFound for unknown ids
func (s *SQLiteStore) GetWebhookConfig(ctx context.Context, id string) (*model.EndpointConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,description,response_status,response_body,active,created_at,updated_at FROM endpoints WHERE id=?`, id)
	cfg, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetAllWebhookConfigs lists endpoints oldest first
func (s *SQLiteStore) GetAllWebhookConfigs(ctx context.Context) ([]model.EndpointConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,description,response_status,response_body,active,created_at,updated_at FROM endpoints ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EndpointConfig
	for rows.Next() {
		cfg, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row scanner) (*model.EndpointConfig, error) {
	var cfg model.EndpointConfig
	if err := row.Scan(&cfg.ID, &cfg.Name, &cfg.Description, &cfg.ResponseStatus, &cfg.ResponseBody, &cfg.Active, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveRequest appends a captured request
func (s *SQLiteStore) SaveRequest(ctx context.Context, req *model.CapturedRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	headers, err := json.Marshal(req.Headers)
	if err != nil {
		return err
	}
	query, err := json.Marshal(req.Query)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO requests(id,endpoint_id,method,path,headers,body,query_params,received_at,ip,user_agent,content_type,size)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		req.ID, req.EndpointID, req.Method, req.Path, string(headers), req.Body, string(query),
		req.Timestamp.UTC(), req.IP, req.UserAgent, req.ContentType, req.Size)
	if err != nil {
		return fmt.Errorf("failed to save request for endpoint %s: %w", req.EndpointID, err)
	}
	return nil
}

// GetRequests returns up to limit requests of one endpoint, newest first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) GetRequests(ctx context.Context, endpointID string, limit int) ([]model.CapturedRequest, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,endpoint_id,method,path,headers,body,query_params,received_at,ip,user_agent,content_type,size
		FROM requests WHERE endpoint_id=? ORDER BY received_at DESC, seq DESC LIMIT ?`, endpointID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CapturedRequest
	for rows.Next() {
		var (
			r              model.CapturedRequest
			headers, query sql.NullString
			body           sql.NullString
			ip, ua, ct     sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EndpointID, &r.Method, &r.Path, &headers, &body, &query, &r.Timestamp, &ip, &ua, &ct, &r.Size); err != nil {
			return nil, err
		}
		if headers.Valid && headers.String != "" {
			_ = json.Unmarshal([]byte(headers.String), &r.Headers)
		}
		if query.Valid && query.String != "" {
			_ = json.Unmarshal([]byte(query.String), &r.Query)
		}
		r.Body = body.String
		r.IP = ip.String
		r.UserAgent = ua.String
		r.ContentType = ct.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRequestsBefore removes requests received before cutoff and reports how many
func (s *SQLiteStore) DeleteRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE received_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
