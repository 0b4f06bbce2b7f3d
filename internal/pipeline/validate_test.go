package pipeline

import (
	"errors"
	"testing"
	"time"

	"webhook-etl/internal/model"
)

func validSpec() model.JobSpec {
	return model.JobSpec{
		Name: "orders",
		Type: model.JobTypeFull,
		Filters: &model.FilterSpec{
			Methods: []string{"POST"},
			Headers: []model.HeaderCondition{{Key: "X-Event", Operator: "regex", Value: "^order"}},
		},
		Transformations: []model.TransformStep{
			step(model.StepMap, 1, model.MapConfig{FieldMappings: map[string]string{"body": "payload"}}),
		},
		Destination: &model.Destination{
			Type:   model.DestinationWebhook,
			Config: model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: "https://example.com/in"}},
		},
	}
}

func TestValidateJobSpec(t *testing.T) {
	if err := ValidateJobSpec(validSpec()); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	invalid := map[string]func(*model.JobSpec){
		"missing name":       func(s *model.JobSpec) { s.Name = " " },
		"unknown type":       func(s *model.JobSpec) { s.Type = "stream" },
		"bad regex":          func(s *model.JobSpec) { s.Filters.Headers[0].Value = "(" },
		"unknown operator":   func(s *model.JobSpec) { s.Filters.Headers[0].Operator = "like" },
		"empty header key":   func(s *model.JobSpec) { s.Filters.Headers[0].Key = "" },
		"relative url":       func(s *model.JobSpec) { s.Destination.Config = model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: "/in"}} },
		"missing dest cfg":   func(s *model.JobSpec) { s.Destination.Config = nil },
		"mismatched config":  func(s *model.JobSpec) { s.Destination.Config = model.FileConfig{Filename: "x.json"} },
		"empty mapping name": func(s *model.JobSpec) { s.Transformations[0].Config = model.MapConfig{FieldMappings: map[string]string{"a": ""}} },
		"reversed dates": func(s *model.JobSpec) {
			s.Filters.DateRange = &model.DateRange{Start: time.Now(), End: time.Now().Add(-time.Hour)}
		},
		"recurring without expression": func(s *model.JobSpec) { s.Schedule = &model.Schedule{Type: "recurring"} },
		"email without recipients": func(s *model.JobSpec) {
			s.Destination = &model.Destination{Type: model.DestinationEmail, Config: model.EmailConfig{}}
		},
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			spec := validSpec()
			mutate(&spec)
			var verr *ValidationError
			if err := ValidateJobSpec(spec); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestValidateJobSpecUnsupported(t *testing.T) {
	spec := validSpec()
	spec.Transformations = append(spec.Transformations, model.TransformStep{Type: "pivot", Enabled: true})
	var unsupported *UnsupportedOperationError
	if err := ValidateJobSpec(spec); !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError for step, got %v", err)
	}

	spec = validSpec()
	spec.Destination = &model.Destination{Type: "ftp"}
	if err := ValidateJobSpec(spec); !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError for destination, got %v", err)
	}
}

func TestValidateJobSpecAcceptsDatabaseDestination(t *testing.T) {
	spec := validSpec()
	spec.Destination = &model.Destination{Type: model.DestinationDatabase}
	if err := ValidateJobSpec(spec); err != nil {
		t.Fatalf("database destination must be accepted at submission: %v", err)
	}
}

func TestValidateJobSpecFileDestinationDefaults(t *testing.T) {
	for name, cfg := range map[string]model.DestinationConfig{
		"no config":      nil,
		"empty filename": model.FileConfig{},
	} {
		spec := validSpec()
		spec.Destination = &model.Destination{Type: model.DestinationFile, Config: cfg}
		if err := ValidateJobSpec(spec); err != nil {
			t.Errorf("%s: file destination must fall back to a default name: %v", name, err)
		}
	}

	spec := validSpec()
	spec.Destination = &model.Destination{Type: model.DestinationFile, Config: model.FileConfig{Filename: "  "}}
	var verr *ValidationError
	if err := ValidateJobSpec(spec); !errors.As(err, &verr) {
		t.Fatalf("blank filename: expected ValidationError, got %v", err)
	}
}

func TestValidateJobSpecRejectsPointerConfigs(t *testing.T) {
	spec := validSpec()
	spec.Transformations = []model.TransformStep{
		step(model.StepFilter, 1, &model.FilterConfig{Field: "method", Value: "POST"}),
	}
	var verr *ValidationError
	if err := ValidateJobSpec(spec); !errors.As(err, &verr) {
		t.Fatalf("pointer step config: expected ValidationError, got %v", err)
	}

	spec = validSpec()
	spec.Destination = &model.Destination{
		Type:   model.DestinationWebhook,
		Config: &model.WebhookConfig{HTTPConfig: model.HTTPConfig{URL: "https://example.com/in"}},
	}
	if err := ValidateJobSpec(spec); !errors.As(err, &verr) {
		t.Fatalf("pointer destination config: expected ValidationError, got %v", err)
	}
}
