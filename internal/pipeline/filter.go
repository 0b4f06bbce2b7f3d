package pipeline

import (
	"regexp"
	"strings"

	"webhook-etl/internal/model"
)

// Matches reports whether req satisfies every predicate present in spec.
// Absent predicates are vacuously true; a nil spec matches everything.
func Matches(req model.CapturedRequest, spec *model.FilterSpec) bool {
	if spec == nil {
		return true
	}

	if dr := spec.DateRange; dr != nil {
		if !dr.Start.IsZero() && req.Timestamp.Before(dr.Start) {
			return false
		}
		if !dr.End.IsZero() && req.Timestamp.After(dr.End) {
			return false
		}
	}

	if len(spec.Methods) > 0 && !containsFold(spec.Methods, req.Method) {
		return false
	}
	if len(spec.ContentTypes) > 0 && !containsSubstring(req.ContentType, spec.ContentTypes) {
		return false
	}
	if len(spec.IPAddresses) > 0 && !containsExact(spec.IPAddresses, req.IP) {
		return false
	}
	if len(spec.UserAgents) > 0 && !containsSubstring(req.UserAgent, spec.UserAgents) {
		return false
	}
	if spec.BodyContains != "" && !strings.Contains(req.Body, spec.BodyContains) {
		return false
	}

	for _, cond := range spec.Headers {
		value, ok := req.Headers[cond.Key]
		if !ok {
			return false
		}
		if !headerMatches(cond, value) {
			return false
		}
	}

	return true
}

// FilterRequests keeps the matching requests in their original order
func FilterRequests(reqs []model.CapturedRequest, spec *model.FilterSpec) []model.CapturedRequest {
	out := make([]model.CapturedRequest, 0, len(reqs))
	for _, r := range reqs {
		if Matches(r, spec) {
			out = append(out, r)
		}
	}
	return out
}

func headerMatches(cond model.HeaderCondition, value string) bool {
	switch cond.Operator {
	case "equals":
		return value == cond.Value
	case "contains":
		return strings.Contains(value, cond.Value)
	case "regex":
		re, err := regexp.Compile(cond.Value)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	default:
		return false
	}
}

func containsFold(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

func containsExact(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.TrimSpace(s) == v {
			return true
		}
	}
	return false
}

func containsSubstring(v string, patterns []string) bool {
	if v == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(v, p) {
			return true
		}
	}
	return false
}
