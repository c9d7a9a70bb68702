// Package ddl expands declarative table definitions into dialect-neutral
// descriptors and applies them inside one transaction.
package ddl

import (
	"fmt"
	"strings"

	"github.com/trellis-db/trellis/internal/schema"
	"github.com/trellis-db/trellis/internal/types"
)

// Expand turns one declarative table into a full definition: type tags
// become concrete kinds, implicit names and defaults are filled in, and
// unnamed indices get generated names.
func Expand(table *schema.Table) (types.TableDef, error) {
	def := types.TableDef{
		Name:        table.Name,
		IfNotExists: table.IfNotExists,
	}

	seen := make(map[string]bool)
	for _, column := range table.Columns {
		col, err := expandColumn(table, column)
		if err != nil {
			return types.TableDef{}, err
		}
		if seen[col.Name] {
			return types.TableDef{}, fmt.Errorf("table %s declares column %s twice", table.Name, col.Name)
		}
		seen[col.Name] = true
		def.Columns = append(def.Columns, col)
	}

	for _, index := range table.Indices {
		if len(index.Columns) == 0 {
			return types.TableDef{}, fmt.Errorf("index on table %s has no columns", table.Name)
		}
		name := index.Name
		if name == "" {
			name = "idx_" + table.Name + "_" + strings.Join(index.Columns, "_")
		}
		def.Indexes = append(def.Indexes, types.IndexDef{
			Name:    name,
			Table:   table.Name,
			Columns: index.Columns,
			Unique:  index.Unique,
		})
	}

	return def, nil
}

func expandColumn(table *schema.Table, column schema.Column) (types.ColumnDef, error) {
	name := column.EffectiveName()
	if name == "" {
		return types.ColumnDef{}, fmt.Errorf("column of type %s in table %s has no name", column.Type, table.Name)
	}

	def := types.ColumnDef{
		Name:    name,
		Length:  column.Length,
		Scale:   column.Scale,
		Values:  column.Values,
		Primary: column.Primary,
		Unique:  column.Unique,
	}

	switch column.Type {
	case "primary_key":
		def.Kind = types.KindInteger
		def.Primary = true
		def.AutoIncrement = true
		def.Unsigned = true
		def.Nullable = false
	case "foreign_key":
		def.Kind = types.KindInteger
		def.Unsigned = true
		def.Nullable = nullableOr(column.Nullable, true)
	case "created_at", "updated_at":
		def.Name = column.Type
		def.Kind = types.KindTimestamp
		def.Nullable = nullableOr(column.Nullable, false)
		def.Default = "CURRENT_TIMESTAMP"
	case "deleted_at":
		def.Kind = types.KindTimestamp
		def.Nullable = nullableOr(column.Nullable, true)
		def.Default = "CURRENT_TIMESTAMP"
	case "slug":
		def.Kind = types.KindVarchar
		def.Unique = true
		def.Nullable = nullableOr(column.Nullable, true)
	case "order":
		def.Kind = types.KindInteger
		def.Unsigned = true
		def.Nullable = nullableOr(column.Nullable, false)
		def.Default = "0"
	case "enum":
		if len(column.Values) == 0 {
			return types.ColumnDef{}, fmt.Errorf("enum column %s.%s requires values", table.Name, name)
		}
		def.Kind = types.KindEnum
		def.Nullable = nullableOr(column.Nullable, true)
	case "char":
		def.Kind = types.KindChar
		def.Nullable = nullableOr(column.Nullable, true)
	case "text":
		def.Kind = types.KindText
		def.Nullable = nullableOr(column.Nullable, true)
	case "int":
		def.Kind = types.KindInteger
		def.Nullable = nullableOr(column.Nullable, true)
	case "tinyint":
		def.Kind = types.KindSmallInt
		def.Nullable = nullableOr(column.Nullable, true)
	case "decimal":
		def.Kind = types.KindDecimal
		def.Nullable = nullableOr(column.Nullable, true)
	case "boolean":
		def.Kind = types.KindBoolean
		def.Nullable = nullableOr(column.Nullable, true)
	case "datetime":
		def.Kind = types.KindTimestamp
		def.Nullable = nullableOr(column.Nullable, true)
	case "json":
		def.Kind = types.KindJSON
		def.Nullable = nullableOr(column.Nullable, true)
	case "array":
		def.Kind = types.KindArray
		def.Nullable = nullableOr(column.Nullable, true)
	default:
		// varchar and every unrecognized tag.
		def.Kind = types.KindVarchar
		def.Nullable = nullableOr(column.Nullable, true)
	}

	if column.Default != nil {
		def.Default = formatDefault(column.Default, def.Kind)
	}

	if column.References != nil {
		if column.References.Table == "" {
			return types.ColumnDef{}, fmt.Errorf("references on %s.%s has no table", table.Name, name)
		}
		refColumn := column.References.Column
		if refColumn == "" {
			refColumn = "id"
		}
		onDelete := column.References.OnDelete
		if onDelete == "" {
			onDelete = "no action"
		}
		def.References = &types.ForeignKey{
			Column:           name,
			ReferencedTable:  column.References.Table,
			ReferencedColumn: refColumn,
			OnDelete:         onDelete,
			OnUpdate:         column.References.OnUpdate,
		}
	}

	return def, nil
}

var knownTags = map[string]bool{
	"primary_key": true, "foreign_key": true, "slug": true, "enum": true,
	"created_at": true, "updated_at": true, "deleted_at": true, "order": true,
	"varchar": true, "text": true, "int": true, "decimal": true,
	"boolean": true, "char": true, "datetime": true, "array": true,
	"tinyint": true, "json": true,
}

// KnownTag reports whether tag is part of the recognized type set.
// Unknown tags still expand, as plain varchar columns.
func KnownTag(tag string) bool {
	return knownTags[tag]
}

func nullableOr(explicit *bool, fallback bool) bool {
	if explicit != nil {
		return *explicit
	}
	return fallback
}

// formatDefault renders a document default as SQL text. String-typed
// columns get their value quoted unless it is already quoted or a SQL
// keyword, so `default: 2024` on a varchar survives as '2024' whether
// or not the document quotes it.
func formatDefault(value any, kind types.ColumnKind) string {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		upper := strings.ToUpper(trimmed)
		switch upper {
		case "CURRENT_TIMESTAMP", "NOW()", "NULL", "TRUE", "FALSE":
			return upper
		}
		if strings.HasPrefix(trimmed, "'") {
			return trimmed
		}
		if isNumericKind(kind) {
			return trimmed
		}
		return "'" + strings.ReplaceAll(trimmed, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case nil:
		return ""
	default:
		text := fmt.Sprintf("%v", v)
		if isNumericKind(kind) {
			return text
		}
		return "'" + text + "'"
	}
}

func isNumericKind(kind types.ColumnKind) bool {
	switch kind {
	case types.KindInteger, types.KindSmallInt, types.KindDecimal, types.KindBoolean:
		return true
	}
	return false
}
