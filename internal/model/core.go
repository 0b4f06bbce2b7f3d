package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType selects which phases a job runs
type JobType string

const (
	JobTypeExtract   JobType = "extract"
	JobTypeTransform JobType = "transform"
	JobTypeLoad      JobType = "load"
	JobTypeFull      JobType = "full"
)

// JobStatus is the top-level lifecycle state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// HeaderCondition matches one request header
type HeaderCondition struct {
	Key      string `json:"key"`
	Operator string `json:"operator"` // equals, contains, regex
	Value    string `json:"value"`
}

// DateRange is an inclusive capture-time window. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON accepts RFC3339 timestamps or plain dates for each bound
func (d *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseBound(raw.Start)
	if err != nil {
		return fmt.Errorf("dateRange.start: %w", err)
	}
	end, err := parseBound(raw.End)
	if err != nil {
		return fmt.Errorf("dateRange.end: %w", err)
	}
	d.Start, d.End = start, end
	return nil
}

func parseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// FilterSpec is a conjunction of optional predicates over captured requests
type FilterSpec struct {
	DateRange    *DateRange        `json:"dateRange,omitempty"`
	Methods      []string          `json:"methods,omitempty"`
	ContentTypes []string          `json:"contentTypes,omitempty"`
	IPAddresses  []string          `json:"ipAddresses,omitempty"`
	UserAgents   []string          `json:"userAgents,omitempty"`
	BodyContains string            `json:"bodyContains,omitempty"`
	Headers      []HeaderCondition `json:"headers,omitempty"`
}

// Schedule is stored with the job for callers that trigger runs externally
type Schedule struct {
	Type       string `json:"type"` // once, recurring
	Expression string `json:"expression,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// JobSpec is the payload accepted when submitting a job
type JobSpec struct {
	Name            string          `json:"name"`
	Type            JobType         `json:"type"`
	EndpointID      string          `json:"endpointId,omitempty"`
	Filters         *FilterSpec     `json:"filters,omitempty"`
	Transformations []TransformStep `json:"transformations,omitempty"`
	Destination     *Destination    `json:"destination,omitempty"`
	Schedule        *Schedule       `json:"schedule,omitempty"`
}

// Job is one unit of ETL work owned by the job manager
type Job struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            JobType         `json:"type"`
	Status          JobStatus       `json:"status"`
	EndpointID      string          `json:"endpointId,omitempty"`
	Filters         *FilterSpec     `json:"filters,omitempty"`
	Transformations []TransformStep `json:"transformations"`
	Destination     *Destination    `json:"destination,omitempty"`
	Schedule        *Schedule       `json:"schedule,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Progress        Progress        `json:"progress"`
	Error           string          `json:"error,omitempty"`
}
