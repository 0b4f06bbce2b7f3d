package model

import (
	"encoding/json"
	"fmt"
)

// DestinationType names a load sink
type DestinationType string

const (
	DestinationWebhook  DestinationType = "webhook"
	DestinationEmail    DestinationType = "email"
	DestinationFile     DestinationType = "file"
	DestinationDatabase DestinationType = "database"
	DestinationAPI      DestinationType = "api"
)

// DestinationConfig is the typed configuration of a destination
type DestinationConfig interface {
	DestinationType() DestinationType
}

// HTTPConfig is shared by the webhook and api sinks
type HTTPConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// WebhookConfig sends one request per record
type WebhookConfig struct {
	HTTPConfig
}

// APIConfig sends the whole record set in one request
type APIConfig struct {
	HTTPConfig
}

// FileConfig configures the file sink
type FileConfig struct {
	Filename string `json:"filename"`
}

// EmailConfig configures the email notification sink
type EmailConfig struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject,omitempty"`
}

// DatabaseConfig is accepted on submission; loading into it is unsupported
type DatabaseConfig struct {
	Table string `json:"table,omitempty"`
}

func (WebhookConfig) DestinationType() DestinationType { return DestinationWebhook }
func (APIConfig) DestinationType() DestinationType { return DestinationAPI }
func (FileConfig) DestinationType() DestinationType { return DestinationFile }
func (EmailConfig) DestinationType() DestinationType { return DestinationEmail }
func (DatabaseConfig) DestinationType() DestinationType { return DestinationDatabase }

// Destination is where a finished record set is delivered
type Destination struct {
	Type        DestinationType   `json:"type"`
	Config      DestinationConfig `json:"config,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// UnmarshalJSON decodes config into the struct matching type
func (d *Destination) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type        DestinationType   `json:"type"`
		Config      json.RawMessage   `json:"config"`
		Credentials map[string]string `json:"credentials"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	hasConfig := len(wire.Config) > 0 && string(wire.Config) != "null"
	decode := func(v interface{}) error {
		if !hasConfig {
			return nil
		}
		return json.Unmarshal(wire.Config, v)
	}

	var cfg DestinationConfig
	switch wire.Type {
	case DestinationWebhook:
		var c WebhookConfig
		if err := decode(&c); err != nil {
			return fmt.Errorf("destination %q config: %w", wire.Type, err)
		}
		cfg = c
	case DestinationAPI:
		var c APIConfig
		if err := decode(&c); err != nil {
			return fmt.Errorf("destination %q config: %w", wire.Type, err)
		}
		cfg = c
	case DestinationFile:
		var c FileConfig
		if err := decode(&c); err != nil {
			return fmt.Errorf("destination %q config: %w", wire.Type, err)
		}
		cfg = c
	case DestinationEmail:
		var c EmailConfig
		if err := decode(&c); err != nil {
			return fmt.Errorf("destination %q config: %w", wire.Type, err)
		}
		cfg = c
	case DestinationDatabase:
		var c DatabaseConfig
		if err := decode(&c); err != nil {
			return fmt.Errorf("destination %q config: %w", wire.Type, err)
		}
		cfg = c
	}

	*d = Destination{Type: wire.Type, Config: cfg, Credentials: wire.Credentials}
	return nil
}
