package pipeline

import (
	"webhook-etl/internal/model"
	"webhook-etl/pkg/utils"
)

// aggregateGroup collects the members of one groupBy value
type aggregateGroup struct {
	value   interface{}
	members []model.GenericRecord
}

// aggregateRecords emits one summary record per distinct groupBy value, in
// order of first occurrence. Records without the field group under nil.
// Without groupBy the records pass through unchanged.
func aggregateRecords(records []model.GenericRecord, cfg model.AggregateConfig) []model.GenericRecord {
	if cfg.GroupBy == "" {
		return records
	}

	var order []string
	groups := make(map[string]*aggregateGroup)
	for _, rec := range records {
		value := rec[cfg.GroupBy]
		key := utils.KeyOf(value)
		g, ok := groups[key]
		if !ok {
			g = &aggregateGroup{value: value}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, rec)
	}

	out := make([]model.GenericRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		summary := model.GenericRecord{
			cfg.GroupBy: g.value,
			"count":     len(g.members),
		}
		if cfg.IncludeItems {
			summary["items"] = g.members
		}
		out = append(out, summary)
	}
	return out
}
