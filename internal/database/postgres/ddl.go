package postgres

import (
	"fmt"
	"strings"

	"github.com/trellis-db/trellis/internal/types"
)

// CreateTableSQL renders the CREATE TABLE statement for def followed by
// one CREATE INDEX statement per index.
func (c *Client) CreateTableSQL(def types.TableDef) []string {
	var lines []string
	var constraints []string

	for _, column := range def.Columns {
		if column.References == nil {
			continue
		}
		fk := fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)",
			c.QuoteIdentifier(column.References.Column),
			c.QuoteIdentifier(column.References.ReferencedTable),
			c.QuoteIdentifier(column.References.ReferencedColumn))
		if column.References.OnDelete != "" {
			fk += fmt.Sprintf(" ON DELETE %s", strings.ToUpper(column.References.OnDelete))
		}
		if column.References.OnUpdate != "" {
			fk += fmt.Sprintf(" ON UPDATE %s", strings.ToUpper(column.References.OnUpdate))
		}
		constraints = append(constraints, fk)
	}

	create := "CREATE TABLE "
	if def.IfNotExists {
		create += "IF NOT EXISTS "
	}
	lines = append(lines, create+c.QuoteIdentifier(def.Name)+" (")

	for i, column := range def.Columns {
		comma := ","
		if i == len(def.Columns)-1 && len(constraints) == 0 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  %s %s%s", c.QuoteIdentifier(column.Name), c.formatColumn(column), comma))
	}

	for i, constraint := range constraints {
		comma := ","
		if i == len(constraints)-1 {
			comma = ""
		}
		lines = append(lines, constraint+comma)
	}

	lines = append(lines, ")")

	statements := []string{strings.Join(lines, "\n")}
	for _, index := range def.Indexes {
		statements = append(statements, c.createIndexSQL(def, index))
	}
	return statements
}

func (c *Client) formatColumn(column types.ColumnDef) string {
	parts := []string{c.columnType(column)}

	if column.Primary {
		parts = append(parts, "PRIMARY KEY")
	}
	if column.Unique && !column.Primary {
		parts = append(parts, "UNIQUE")
	}
	if !column.Nullable && !column.Primary {
		parts = append(parts, "NOT NULL")
	}
	if column.Default != "" {
		parts = append(parts, "DEFAULT "+column.Default)
	}
	if column.Kind == types.KindEnum && len(column.Values) > 0 {
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))",
			c.QuoteIdentifier(column.Name), quoteValues(column.Values)))
	}

	return strings.Join(parts, " ")
}

// columnType maps the dialect-neutral kind to a Postgres type. Unsigned
// has no Postgres equivalent and is ignored.
func (c *Client) columnType(column types.ColumnDef) string {
	switch column.Kind {
	case types.KindInteger:
		if column.AutoIncrement {
			return "SERIAL"
		}
		return "INTEGER"
	case types.KindSmallInt:
		return "SMALLINT"
	case types.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", lengthOr(column.Length, 255))
	case types.KindChar:
		return fmt.Sprintf("CHAR(%d)", lengthOr(column.Length, 1))
	case types.KindText:
		return "TEXT"
	case types.KindDecimal:
		length, scale := column.Length, column.Scale
		if length == 0 {
			length, scale = 10, 2
		}
		return fmt.Sprintf("DECIMAL(%d, %d)", length, scale)
	case types.KindBoolean:
		return "BOOLEAN"
	case types.KindTimestamp:
		return "TIMESTAMP"
	case types.KindJSON:
		return "JSONB"
	case types.KindArray:
		return "TEXT[]"
	case types.KindEnum:
		return "VARCHAR(255)"
	default:
		return strings.ToUpper(string(column.Kind))
	}
}

func (c *Client) createIndexSQL(def types.TableDef, index types.IndexDef) string {
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	exists := ""
	if def.IfNotExists {
		exists = "IF NOT EXISTS "
	}
	columns := make([]string, len(index.Columns))
	for i, col := range index.Columns {
		columns[i] = c.QuoteIdentifier(col)
	}
	return fmt.Sprintf("CREATE %sINDEX %s%s ON %s (%s)",
		unique, exists, c.QuoteIdentifier(index.Name), c.QuoteIdentifier(def.Name), strings.Join(columns, ", "))
}

func quoteValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}

func lengthOr(length, fallback int) int {
	if length > 0 {
		return length
	}
	return fallback
}
