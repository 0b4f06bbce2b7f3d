package store

import (
	"context"
	"errors"
	"time"

	"webhook-etl/internal/model"
)

// ErrNotFound is returned when an endpoint config does not exist
var ErrNotFound = errors.New("not found")

// Store persists endpoint configs and the requests captured on them
type Store interface {
	SaveWebhookConfig(ctx context.Context, cfg *model.EndpointConfig) error
	GetWebhookConfig(ctx context.Context, id string) (*model.EndpointConfig, error)
	GetAllWebhookConfigs(ctx context.Context) ([]model.EndpointConfig, error)

	SaveRequest(ctx context.Context, req *model.CapturedRequest) error
	GetRequests(ctx context.Context, endpointID string, limit int) ([]model.CapturedRequest, error)
	DeleteRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
