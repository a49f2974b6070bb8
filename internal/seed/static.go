// ABOUTME: Static fallback data used when no OpenAI key is configured.
// ABOUTME: Derives deterministic per-field values from the parsed schema.

package seed

import (
	"fmt"
	"time"

	"github.com/2389/nv/internal/schema"
)

var sampleNames = []string{"Ada", "Grace", "Edsger", "Barbara", "Donald", "Radia", "Ken", "Frances"}

// staticRecords builds deterministic sample records for one resource.
// Values are derived from the field's base type; enums cycle through their
// declared values, relations get placeholder ids.
func staticRecords(res schema.ResourceDescriptor, count int) []map[string]any {
	records := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		record := map[string]any{}
		for _, f := range res.Fields {
			if f.Name == "id" {
				continue
			}
			record[f.Name] = staticValue(res, f, i)
		}
		records = append(records, record)
	}
	return records
}

func staticValue(res schema.ResourceDescriptor, f schema.FieldDescriptor, i int) any {
	switch {
	case f.IsRelation:
		return fmt.Sprintf("%s_%d", schema.CommandName(f.RelationTarget), i+1)
	case f.IsEnum():
		return f.EnumValues[i%len(f.EnumValues)]
	}

	switch f.BaseType {
	case "number", "int", "float":
		return float64((i + 1) * 10)
	case "boolean", "bool":
		return i%2 == 0
	case "date", "datetime", "timestamp":
		return time.Now().UTC().AddDate(0, 0, -i).Format(time.RFC3339)
	case "email":
		return fmt.Sprintf("%s@example.com", sampleNames[i%len(sampleNames)])
	default:
		if f.Name == "name" {
			return sampleNames[i%len(sampleNames)]
		}
		if f.Name == "email" {
			return fmt.Sprintf("%s@example.com", sampleNames[i%len(sampleNames)])
		}
		return fmt.Sprintf("%s %s %d", res.Name, f.Name, i+1)
	}
}
