package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trellis-db/trellis/internal/config"
	"github.com/trellis-db/trellis/internal/ddl"
	"github.com/trellis-db/trellis/internal/depgraph"
	"github.com/trellis-db/trellis/internal/schema"
	"github.com/trellis-db/trellis/internal/seeder"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the schema document for structural problems",
	Long: `Load the schema document and report structural problems: duplicate or
unnamed columns, unknown reference targets, invalid where operators,
malformed markers, and dependency cycles. Unknown type tags are
warnings; everything else fails the command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		path := cfg.SchemaPath
		if validateFile != "" {
			path = validateFile
		}

		doc, err := schema.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load schema document: %w", err)
		}

		report := checkDocument(doc)

		for _, warning := range report.warnings {
			color.Yellow("⚠️  %s", warning)
		}
		for _, problem := range report.problems {
			color.Red("❌ %s", problem)
		}

		if len(report.problems) > 0 {
			return fmt.Errorf("schema document has %d problem(s)", len(report.problems))
		}

		color.Green("✅ Schema document is valid (%d tables, %d data groups, %d screens, %d routes)",
			len(doc.Tables), len(doc.Data), len(doc.Screens), len(doc.Routes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Schema document path (overrides schema_path)")
}

type validationReport struct {
	problems []string
	warnings []string
}

func (r *validationReport) problemf(format string, args ...any) {
	r.problems = append(r.problems, fmt.Sprintf(format, args...))
}

func (r *validationReport) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func checkDocument(doc *schema.Document) *validationReport {
	report := &validationReport{}

	for _, name := range sortedNames(doc.Tables) {
		checkTable(doc, doc.Tables[name], report)
	}

	if _, err := depgraph.Tables(doc).Order(); err != nil {
		report.problemf("%v", err)
	}
	if _, err := depgraph.Data(doc).Order(); err != nil {
		report.problemf("seed data: %v", err)
	}

	groups := make([]string, 0, len(doc.Data))
	for group := range doc.Data {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		for i, row := range doc.Data[group] {
			checkRow(fmt.Sprintf("%s[%d]", group, i), row, report)
		}
	}

	return report
}

func checkTable(doc *schema.Document, t *schema.Table, report *validationReport) {
	for _, column := range t.Columns {
		if column.Type != "" && !ddl.KnownTag(column.Type) {
			report.warnf("unknown type %q on %s.%s falls back to varchar", column.Type, t.Name, column.EffectiveName())
		}
		if column.References != nil && column.References.Table != "" {
			if _, ok := doc.Tables[column.References.Table]; !ok {
				report.warnf("%s.%s references table %s not declared in this document (assumed pre-existing)",
					t.Name, column.EffectiveName(), column.References.Table)
			}
		}
	}

	if _, err := ddl.Expand(t); err != nil {
		report.problemf("%v", err)
	}
}

// checkRow inspects one seed row's markers, recursing into nested
// relation rows.
func checkRow(location string, row schema.Row, report *validationReport) {
	for _, key := range sortedRowKeys(row) {
		value := row[key]
		if key == schema.RelationsKey {
			checkRelations(location, value, report)
			continue
		}
		checkValue(location, key, value, report)
	}
}

func checkValue(location, column string, value any, report *validationReport) {
	m, ok := value.(map[string]any)
	if !ok {
		return
	}

	switch schema.Classify(value) {
	case schema.MarkerWhere:
		where, _ := schema.WherePredicate(value)
		checkPredicate(location, column, where, report)
	case schema.MarkerLocale, schema.MarkerHash:
		return
	default:
		if _, present := m["where"]; present {
			report.problemf("%s.%s: where marker must hold a predicate map", location, column)
			return
		}
		if _, present := m["hash"]; present {
			report.problemf("%s.%s: hash marker must hold a string", location, column)
			return
		}
		if hasLocaleKey(m) {
			report.problemf("%s.%s: locale map mixes locale codes with other keys", location, column)
		}
	}
}

func checkPredicate(location, column string, where map[string]any, report *validationReport) {
	for _, predColumn := range sortedRowKeys(where) {
		ops, ok := where[predColumn].(map[string]any)
		if !ok {
			continue
		}
		for _, op := range sortedRowKeys(ops) {
			if !seeder.ValidOperator(op) {
				report.problemf("%s.%s: unknown where operator %q", location, column, op)
			}
		}
	}
}

func checkRelations(location string, value any, report *validationReport) {
	relations, ok := value.(map[string]any)
	if !ok {
		report.problemf("%s: relations must map table names to row lists", location)
		return
	}
	for _, child := range sortedRowKeys(relations) {
		items, ok := relations[child].([]any)
		if !ok {
			report.problemf("%s: relations.%s must be a list", location, child)
			continue
		}
		for i, item := range items {
			row, ok := item.(map[string]any)
			if !ok {
				report.problemf("%s: relations.%s[%d] must be a map", location, child, i)
				continue
			}
			if rawWhere, isLink := row["where"]; isLink {
				where, ok := rawWhere.(map[string]any)
				if !ok {
					report.problemf("%s: relations.%s[%d] where must be a map", location, child, i)
					continue
				}
				checkPredicate(fmt.Sprintf("%s.relations.%s[%d]", location, child, i), "where", where, report)
				continue
			}
			checkRow(fmt.Sprintf("%s.relations.%s[%d]", location, child, i), schema.Row(row), report)
		}
	}
}

func hasLocaleKey(m map[string]any) bool {
	for key := range m {
		if schema.IsLocaleCode(key) {
			return true
		}
	}
	return false
}

func sortedNames(tables map[string]*schema.Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedRowKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
