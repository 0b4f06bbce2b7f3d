package model

import (
	"encoding/json"
	"fmt"
)

// StepType names a transformation operation
type StepType string

const (
	StepMap       StepType = "map"
	StepFilter    StepType = "filter"
	StepAggregate StepType = "aggregate"
	StepEnrich    StepType = "enrich"
	StepValidate  StepType = "validate"
)

// StepConfig is the typed configuration of one transformation step.
// The concrete type always matches the step's Type.
type StepConfig interface {
	StepType() StepType
}

// FilterConfig keeps records whose Field equals Value
type FilterConfig struct {
	Field string      `json:"field,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// MapConfig renames fields, old name -> new name
type MapConfig struct {
	FieldMappings map[string]string `json:"fieldMappings,omitempty"`
}

// AggregateConfig groups records by one field
type AggregateConfig struct {
	GroupBy      string `json:"groupBy,omitempty"`
	IncludeItems bool   `json:"includeItems,omitempty"`
}

// EnrichConfig merges constant fields into every record
type EnrichConfig struct {
	AdditionalFields map[string]interface{} `json:"additionalFields,omitempty"`
}

// ValidateConfig drops records missing any required field
type ValidateConfig struct {
	RequiredFields []string `json:"requiredFields,omitempty"`
}

func (FilterConfig) StepType() StepType { return StepFilter }
func (MapConfig) StepType() StepType { return StepMap }
func (AggregateConfig) StepType() StepType { return StepAggregate }
func (EnrichConfig) StepType() StepType { return StepEnrich }
func (ValidateConfig) StepType() StepType { return StepValidate }

// TransformStep is one entry of a job's ordered transformation chain
type TransformStep struct {
	ID      string     `json:"id"`
	Type    StepType   `json:"type"`
	Config  StepConfig `json:"config,omitempty"`
	Enabled bool       `json:"enabled"`
	Order   int        `json:"order"`
}

// UnmarshalJSON decodes config into the struct matching type.
// Unknown types keep a nil Config so submission validation can reject them.
func (s *TransformStep) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID      string          `json:"id"`
		Type    StepType        `json:"type"`
		Config  json.RawMessage `json:"config"`
		Enabled bool            `json:"enabled"`
		Order   int             `json:"order"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	cfg, err := decodeStepConfig(wire.Type, wire.Config)
	if err != nil {
		return fmt.Errorf("transformation %q config: %w", wire.Type, err)
	}

	*s = TransformStep{
		ID:      wire.ID,
		Type:    wire.Type,
		Config:  cfg,
		Enabled: wire.Enabled,
		Order:   wire.Order,
	}
	return nil
}

func decodeStepConfig(t StepType, raw json.RawMessage) (StepConfig, error) {
	var target StepConfig
	switch t {
	case StepFilter:
		target = &FilterConfig{}
	case StepMap:
		target = &MapConfig{}
	case StepAggregate:
		target = &AggregateConfig{}
	case StepEnrich:
		target = &EnrichConfig{}
	case StepValidate:
		target = &ValidateConfig{}
	default:
		return nil, nil
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, err
		}
	}

	// store values, not pointers, so copies of a step never share config
	switch c := target.(type) {
	case *FilterConfig:
		return *c, nil
	case *MapConfig:
		return *c, nil
	case *AggregateConfig:
		return *c, nil
	case *EnrichConfig:
		return *c, nil
	case *ValidateConfig:
		return *c, nil
	}
	return nil, nil
}
