package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"webhook-etl/internal/model"
)

// LoadJobSpec reads a job specification from a YAML or JSON file. YAML is
// normalised through JSON so the tagged step and destination configs decode
// the same way as API submissions.
func LoadJobSpec(path string) (model.JobSpec, error) {
	var spec model.JobSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read job file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
	default:
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return spec, fmt.Errorf("parse job file: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return spec, fmt.Errorf("parse job file: %w", err)
		}
	}

	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("decode job file: %w", err)
	}
	return spec, nil
}
