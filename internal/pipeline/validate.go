package pipeline

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"webhook-etl/internal/model"
)

// ValidateJobSpec checks a submission before it becomes a job. Malformed
// fields yield *ValidationError, unknown step or destination types yield
// *UnsupportedOperationError.
func ValidateJobSpec(spec model.JobSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}

	switch spec.Type {
	case model.JobTypeExtract, model.JobTypeTransform, model.JobTypeLoad, model.JobTypeFull:
	case "":
		return &ValidationError{Field: "type", Reason: "is required"}
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown job type %q", spec.Type)}
	}

	if err := validateFilters(spec.Filters); err != nil {
		return err
	}
	for i, step := range spec.Transformations {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	if err := validateDestination(spec.Destination); err != nil {
		return err
	}
	return validateSchedule(spec.Schedule)
}

func validateFilters(f *model.FilterSpec) error {
	if f == nil {
		return nil
	}

	if dr := f.DateRange; dr != nil && !dr.Start.IsZero() && !dr.End.IsZero() && dr.Start.After(dr.End) {
		return &ValidationError{Field: "filters.dateRange", Reason: "start is after end"}
	}
	for _, m := range f.Methods {
		if strings.TrimSpace(m) == "" {
			return &ValidationError{Field: "filters.methods", Reason: "contains an empty method"}
		}
	}
	for i, cond := range f.Headers {
		field := fmt.Sprintf("filters.headers[%d]", i)
		if cond.Key == "" {
			return &ValidationError{Field: field, Reason: "key is required"}
		}
		switch cond.Operator {
		case "equals", "contains":
		case "regex":
			if _, err := regexp.Compile(cond.Value); err != nil {
				return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid regex: %v", err)}
			}
		default:
			return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown operator %q", cond.Operator)}
		}
	}
	return nil
}

func validateStep(i int, step model.TransformStep) error {
	field := fmt.Sprintf("transformations[%d]", i)

	switch step.Type {
	case model.StepFilter, model.StepMap, model.StepAggregate, model.StepEnrich, model.StepValidate:
	default:
		return &UnsupportedOperationError{Kind: "transformation", Name: string(step.Type)}
	}

	if step.Config == nil {
		return nil
	}
	if step.Config.StepType() != step.Type {
		return &ValidationError{Field: field + ".config", Reason: fmt.Sprintf("%s config given for %s step", step.Config.StepType(), step.Type)}
	}

	switch cfg := step.Config.(type) {
	case model.MapConfig:
		for oldField, newField := range cfg.FieldMappings {
			if oldField == "" || newField == "" {
				return &ValidationError{Field: field + ".config.fieldMappings", Reason: "field names cannot be empty"}
			}
		}
	case model.ValidateConfig:
		for _, f := range cfg.RequiredFields {
			if f == "" {
				return &ValidationError{Field: field + ".config.requiredFields", Reason: "field names cannot be empty"}
			}
		}
	case model.FilterConfig, model.AggregateConfig, model.EnrichConfig:
	default:
		return configTypeError(field+".config", step.Config)
	}
	return nil
}

func validateDestination(d *model.Destination) error {
	if d == nil {
		return nil
	}

	switch d.Type {
	case model.DestinationWebhook, model.DestinationAPI, model.DestinationFile, model.DestinationEmail, model.DestinationDatabase:
	default:
		return &UnsupportedOperationError{Kind: "destination", Name: string(d.Type)}
	}

	// file falls back to <jobID>.json and database never loads
	if d.Config == nil {
		if d.Type == model.DestinationDatabase || d.Type == model.DestinationFile {
			return nil
		}
		return &ValidationError{Field: "destination.config", Reason: "is required"}
	}
	if d.Config.DestinationType() != d.Type {
		return &ValidationError{Field: "destination.config", Reason: fmt.Sprintf("%s config given for %s destination", d.Config.DestinationType(), d.Type)}
	}

	switch cfg := d.Config.(type) {
	case model.WebhookConfig:
		return validateHTTPConfig(cfg.HTTPConfig)
	case model.APIConfig:
		return validateHTTPConfig(cfg.HTTPConfig)
	case model.FileConfig:
		if cfg.Filename != "" && strings.TrimSpace(cfg.Filename) == "" {
			return &ValidationError{Field: "destination.config.filename", Reason: "cannot be blank"}
		}
	case model.EmailConfig:
		if len(cfg.Recipients) == 0 {
			return &ValidationError{Field: "destination.config.recipients", Reason: "at least one recipient is required"}
		}
	case model.DatabaseConfig:
	default:
		return configTypeError("destination.config", d.Config)
	}
	return nil
}

// configTypeError rejects configs that satisfy the interface only through a
// pointer; execution reads them by value.
func configTypeError(field string, cfg interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unexpected config type %T, pass the config by value", cfg)}
}

var methodToken = regexp.MustCompile(`^[A-Za-z]+$`)

func validateHTTPConfig(cfg model.HTTPConfig) error {
	u, err := url.Parse(cfg.URL)
	if err != nil || cfg.URL == "" || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "destination.config.url", Reason: "must be an absolute http(s) URL"}
	}
	if cfg.Method != "" && !methodToken.MatchString(cfg.Method) {
		return &ValidationError{Field: "destination.config.method", Reason: fmt.Sprintf("invalid method %q", cfg.Method)}
	}
	return nil
}

func validateSchedule(s *model.Schedule) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case "once":
	case "recurring":
		if strings.TrimSpace(s.Expression) == "" {
			return &ValidationError{Field: "schedule.expression", Reason: "is required for recurring schedules"}
		}
	default:
		return &ValidationError{Field: "schedule.type", Reason: fmt.Sprintf("unknown schedule type %q", s.Type)}
	}
	return nil
}
