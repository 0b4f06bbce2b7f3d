package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"webhook-etl/internal/model"
	"webhook-etl/pkg/utils"
)

// Transformer applies an ordered chain of transformation steps to a record set
type Transformer struct {
	Now func() time.Time
}

// ApplyTransformations runs steps with the wall clock
func ApplyTransformations(ctx context.Context, records []model.GenericRecord, steps []model.TransformStep) ([]model.GenericRecord, error) {
	return Transformer{Now: time.Now}.Apply(ctx, records, steps)
}

// OrderedSteps returns the enabled steps sorted by Order, keeping the
// submitted order for equal values.
func OrderedSteps(steps []model.TransformStep) []model.TransformStep {
	enabled := make([]model.TransformStep, 0, len(steps))
	for _, s := range steps {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order < enabled[j].Order
	})
	return enabled
}

// Apply runs every enabled step in sequence. The output of one step is the
// exact input of the next; the first error aborts the chain.
func (t Transformer) Apply(ctx context.Context, records []model.GenericRecord, steps []model.TransformStep) ([]model.GenericRecord, error) {
	now := t.Now
	if now == nil {
		now = time.Now
	}

	current := records
	for i, step := range OrderedSteps(steps) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := len(current)
		next, err := applyStep(current, step, now)
		if err != nil {
			return nil, err
		}
		current = next

		log.Printf("🔄 Transform step %d (%s, order %d): %d → %d records", i+1, step.Type, step.Order, before, len(current))
	}

	return current, nil
}

func applyStep(records []model.GenericRecord, step model.TransformStep, now func() time.Time) ([]model.GenericRecord, error) {
	switch step.Type {
	case model.StepFilter:
		cfg, err := stepConfig[model.FilterConfig](step)
		if err != nil {
			return nil, err
		}
		return filterRecords(records, cfg), nil
	case model.StepMap:
		cfg, err := stepConfig[model.MapConfig](step)
		if err != nil {
			return nil, err
		}
		return mapRecords(records, cfg), nil
	case model.StepAggregate:
		cfg, err := stepConfig[model.AggregateConfig](step)
		if err != nil {
			return nil, err
		}
		return aggregateRecords(records, cfg), nil
	case model.StepEnrich:
		cfg, err := stepConfig[model.EnrichConfig](step)
		if err != nil {
			return nil, err
		}
		return enrichRecords(records, cfg, now()), nil
	case model.StepValidate:
		cfg, err := stepConfig[model.ValidateConfig](step)
		if err != nil {
			return nil, err
		}
		return validateRecords(records, cfg), nil
	default:
		return nil, &UnsupportedOperationError{Kind: "transformation", Name: string(step.Type)}
	}
}

// stepConfig returns the step's config as T. A missing config is the zero
// value; any other type is an error rather than a silent zero config.
func stepConfig[T model.StepConfig](step model.TransformStep) (T, error) {
	var zero T
	if step.Config == nil {
		return zero, nil
	}
	cfg, ok := step.Config.(T)
	if !ok {
		return zero, configTypeError(fmt.Sprintf("transformation %s config", step.Type), step.Config)
	}
	return cfg, nil
}

// filterRecords keeps records whose field equals the configured value.
// Without both a field and a value every record is kept.
func filterRecords(records []model.GenericRecord, cfg model.FilterConfig) []model.GenericRecord {
	out := make([]model.GenericRecord, 0, len(records))
	if cfg.Field == "" || cfg.Value == nil {
		return append(out, records...)
	}
	for _, rec := range records {
		if v, ok := rec[cfg.Field]; ok && utils.ValuesEqual(v, cfg.Value) {
			out = append(out, rec)
		}
	}
	return out
}

// mapRecords renames fields on a shallow copy of each record. Values are
// read from the input record, so mappings do not chain.
func mapRecords(records []model.GenericRecord, cfg model.MapConfig) []model.GenericRecord {
	oldFields := make([]string, 0, len(cfg.FieldMappings))
	for k := range cfg.FieldMappings {
		oldFields = append(oldFields, k)
	}
	sort.Strings(oldFields)

	out := make([]model.GenericRecord, 0, len(records))
	for _, rec := range records {
		result := copyRecord(rec)
		// sources are removed before any target is written
		for _, oldField := range oldFields {
			delete(result, oldField)
		}
		for _, oldField := range oldFields {
			if v, ok := rec[oldField]; ok {
				result[cfg.FieldMappings[oldField]] = v
			}
		}
		out = append(out, result)
	}
	return out
}

// enrichRecords merges constant fields and stamps enrichedAt
func enrichRecords(records []model.GenericRecord, cfg model.EnrichConfig, at time.Time) []model.GenericRecord {
	stamp := at.UTC().Format(time.RFC3339Nano)
	out := make([]model.GenericRecord, 0, len(records))
	for _, rec := range records {
		result := copyRecord(rec)
		for k, v := range cfg.AdditionalFields {
			result[k] = v
		}
		result["enrichedAt"] = stamp
		out = append(out, result)
	}
	return out
}

// validateRecords drops records missing a required field or holding nil in it
func validateRecords(records []model.GenericRecord, cfg model.ValidateConfig) []model.GenericRecord {
	out := make([]model.GenericRecord, 0, len(records))
	for _, rec := range records {
		if hasRequiredFields(rec, cfg.RequiredFields) {
			out = append(out, rec)
		}
	}
	return out
}

func hasRequiredFields(rec model.GenericRecord, fields []string) bool {
	for _, field := range fields {
		if v, ok := rec[field]; !ok || v == nil {
			return false
		}
	}
	return true
}

func copyRecord(rec model.GenericRecord) model.GenericRecord {
	result := make(model.GenericRecord, len(rec)+1)
	for k, v := range rec {
		result[k] = v
	}
	return result
}
