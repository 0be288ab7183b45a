package core

// mapping.go reconciles discovered columns with a table's canonical fields.
//
// Auto-detection compares lowercased column names against each field's
// synonym list. Inventory and orders resolve competing columns differently
// (see DetectStrategy), and callers rely on both behaviours.

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AutoDetect assigns source columns to canonical fields using the table's
// synonyms and detection strategy. Fields with no matching column are absent
// from the result.
func AutoDetect(def TableDefinition, columns []string) Assignment {
	assigned := make(Assignment, len(def.FieldSpecs))

	switch def.Detect {
	case DetectLastMatch:
		for _, col := range columns {
			lower := strings.ToLower(col)
			for _, f := range def.FieldSpecs {
				if containsName(f.Synonyms, lower) {
					assigned[f.Name] = col
				}
			}
		}
	default:
		for _, f := range def.FieldSpecs {
			for _, col := range columns {
				if containsName(f.Synonyms, strings.ToLower(col)) {
					assigned[f.Name] = col
					break
				}
			}
		}
	}

	return assigned
}

// Missing returns the canonical fields with no assigned source, in schema order.
func Missing(def TableDefinition, a Assignment) []string {
	var missing []string
	for _, f := range def.FieldSpecs {
		if _, ok := a[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// ParseMapping decodes an explicit column mapping. The document must be a
// JSON object whose values are all strings.
func ParseMapping(raw string) (ColumnMapping, error) {
	var m ColumnMapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, malformedMapping("expected a JSON object of source column to field name", err)
	}
	if m == nil {
		return nil, malformedMapping("expected a JSON object of source column to field name", nil)
	}
	return m, nil
}

// ValidateMapping checks an explicit mapping against the table and the
// discovered columns and returns the resulting assignment.
//
// Every canonical field must be a target (IncompleteMapping), every key must
// name a discovered column (UnknownSourceColumn), and no field may be fed
// by two columns (MalformedMapping). Targets that are not canonical fields
// are ignored.
func ValidateMapping(def TableDefinition, ds *RawDataset, m ColumnMapping) (Assignment, error) {
	assigned := make(Assignment, len(def.FieldSpecs))
	var conflicts []string

	sources := make([]string, 0, len(m))
	for src := range m {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		field := m[src]
		if _, ok := def.Field(field); !ok {
			continue
		}
		if prev, dup := assigned[field]; dup {
			conflicts = append(conflicts, fmt.Sprintf("%s (from %s and %s)", field, prev, src))
			continue
		}
		assigned[field] = src
	}

	if missing := Missing(def, assigned); len(missing) > 0 {
		return nil, incompleteMapping(missing)
	}

	var unknown []string
	for _, src := range sources {
		if !ds.HasColumn(src) {
			unknown = append(unknown, src)
		}
	}
	if len(unknown) > 0 {
		return nil, unknownSourceColumn(unknown)
	}

	if len(conflicts) > 0 {
		return nil, malformedMapping("field mapped more than once: "+strings.Join(conflicts, ", "), nil)
	}

	return assigned, nil
}

// project renames and restricts each row to the canonical fields in schema
// order. The result rows are aligned with def.Required().
func project(def TableDefinition, ds *RawDataset, a Assignment) [][]string {
	rows := make([][]string, len(ds.Rows))
	for i, raw := range ds.Rows {
		row := make([]string, len(def.FieldSpecs))
		for j, f := range def.FieldSpecs {
			row[j] = raw[a[f.Name]]
		}
		rows[i] = row
	}
	return rows
}

func containsName(names []string, lower string) bool {
	for _, n := range names {
		if n == lower {
			return true
		}
	}
	return false
}
