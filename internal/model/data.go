package model

import "time"

// GenericRecord is a schema-agnostic map flowing through the transform phase
type GenericRecord map[string]interface{}

// CapturedRequest is one inbound HTTP call received on a generated endpoint.
// It is written once by the capture server and only read afterwards.
type CapturedRequest struct {
	ID          string            `json:"id"`
	EndpointID  string            `json:"endpointId"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	Query       map[string]string `json:"query"`
	Timestamp   time.Time         `json:"timestamp"`
	IP          string            `json:"ip,omitempty"`
	UserAgent   string            `json:"userAgent,omitempty"`
	ContentType string            `json:"contentType,omitempty"`
	Size        int64             `json:"size"`
}

// Record converts the request into the map form used by transformation steps
func (r CapturedRequest) Record() GenericRecord {
	headers := make(map[string]interface{}, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	query := make(map[string]interface{}, len(r.Query))
	for k, v := range r.Query {
		query[k] = v
	}

	rec := GenericRecord{
		"id":         r.ID,
		"endpointId": r.EndpointID,
		"method":     r.Method,
		"path":       r.Path,
		"headers":    headers,
		"body":       r.Body,
		"query":      query,
		"timestamp":  r.Timestamp.UTC().Format(time.RFC3339Nano),
		"size":       r.Size,
	}
	if r.IP != "" {
		rec["ip"] = r.IP
	}
	if r.UserAgent != "" {
		rec["userAgent"] = r.UserAgent
	}
	if r.ContentType != "" {
		rec["contentType"] = r.ContentType
	}
	return rec
}

// EndpointConfig describes a generated webhook endpoint
type EndpointConfig struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ResponseStatus int       `json:"responseStatus"`
	ResponseBody   string    `json:"responseBody,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
