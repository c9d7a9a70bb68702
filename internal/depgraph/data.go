package depgraph

import (
	"sort"

	"github.com/trellis-db/trellis/internal/schema"
)

// Tables builds the table-creation graph: one node per declared table, one
// edge per references attribute targeting another declared table.
func Tables(doc *schema.Document) *Graph {
	g := New()
	for name, t := range doc.Tables {
		g.Add(name)
		for _, c := range t.Columns {
			if c.References == nil || c.References.Table == "" {
				continue
			}
			if c.References.Table == name {
				continue
			}
			g.Add(name, c.References.Table)
		}
	}
	return g
}

// Data builds the seed-group graph. A group depends on the tables its rows
// look up: where-marked columns contribute the column's declared reference
// target, and relation items carrying a nested where contribute the
// relation's table (its rows must exist before junction rows can point at
// them). Relation items without a where are created by the group itself,
// so only their own markers are scanned, recursively.
func Data(doc *schema.Document) *Graph {
	g := New()
	for name, rows := range doc.Data {
		deps := make(map[string]bool)
		for _, row := range rows {
			scanRow(doc, name, row, deps)
		}

		list := make([]string, 0, len(deps))
		for dep := range deps {
			if dep != name {
				list = append(list, dep)
			}
		}
		sort.Strings(list)
		g.Add(name, list...)
	}
	return g
}

func scanRow(doc *schema.Document, table string, row schema.Row, deps map[string]bool) {
	for key, value := range row {
		if key == schema.RelationsKey {
			scanRelations(doc, value, deps)
			continue
		}
		if schema.Classify(value) != schema.MarkerWhere {
			continue
		}
		if t, ok := doc.Tables[table]; ok {
			if target := t.ReferenceTarget(key); target != "" {
				deps[target] = true
			}
		}
	}
}

func scanRelations(doc *schema.Document, value any, deps map[string]bool) {
	relations, ok := value.(map[string]any)
	if !ok {
		return
	}
	for child, raw := range relations {
		items, ok := raw.([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if _, isWhere := m["where"]; isWhere {
				deps[child] = true
				continue
			}
			scanRow(doc, child, schema.Row(m), deps)
		}
	}
}

// WhereCount counts the indirect-reference markers a row carries,
// including those of its nested relation rows.
func WhereCount(row schema.Row) int {
	count := 0
	for key, value := range row {
		if key == schema.RelationsKey {
			relations, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for _, raw := range relations {
				items, ok := raw.([]any)
				if !ok {
					continue
				}
				for _, item := range items {
					m, ok := item.(map[string]any)
					if !ok {
						continue
					}
					if _, isWhere := m["where"]; isWhere {
						count++
						continue
					}
					count += WhereCount(schema.Row(m))
				}
			}
			continue
		}
		if schema.Classify(value) == schema.MarkerWhere {
			count++
		}
	}
	return count
}

// SortRows orders a group's rows by ascending indirect-reference count.
// The sort is stable so equal rows keep document order, which the order
// column sequencing relies on.
func SortRows(rows []schema.Row) []schema.Row {
	sorted := make([]schema.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return WhereCount(sorted[i]) < WhereCount(sorted[j])
	})
	return sorted
}
