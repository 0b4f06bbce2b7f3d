package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"webhook-etl/internal/model"
)

// RequestSource is the storage collaborator read during extract
type RequestSource interface {
	GetRequests(ctx context.Context, endpointID string, limit int) ([]model.CapturedRequest, error)
	GetAllWebhookConfigs(ctx context.Context) ([]model.EndpointConfig, error)
}

// maxConcurrentReads bounds parallel per-endpoint reads when no scope is set
const maxConcurrentReads = 4

// Extract resolves the record set for one endpoint, or for every endpoint when
// endpointID is empty, and applies the filter spec. Results keep endpoint
// order followed by storage order.
func Extract(ctx context.Context, src RequestSource, endpointID string, limit int, filters *model.FilterSpec) ([]model.CapturedRequest, error) {
	var endpointIDs []string
	if endpointID != "" {
		endpointIDs = []string{endpointID}
	} else {
		configs, err := src.GetAllWebhookConfigs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list endpoints: %w", err)
		}
		for _, c := range configs {
			endpointIDs = append(endpointIDs, c.ID)
		}
	}

	perEndpoint := make([][]model.CapturedRequest, len(endpointIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, id := range endpointIDs {
		g.Go(func() error {
			reqs, err := src.GetRequests(gctx, id, limit)
			if err != nil {
				return fmt.Errorf("failed to read requests for endpoint %s: %w", id, err)
			}
			perEndpoint[i] = reqs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.CapturedRequest
	for _, reqs := range perEndpoint {
		all = append(all, reqs...)
	}
	matched := FilterRequests(all, filters)

	log.Printf("➡️ Extract: %d endpoints, %d requests read, %d matched filters", len(endpointIDs), len(all), len(matched))
	return matched, nil
}

// ToRecords converts captured requests into transformable records
func ToRecords(reqs []model.CapturedRequest) []model.GenericRecord {
	out := make([]model.GenericRecord, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Record())
	}
	return out
}
