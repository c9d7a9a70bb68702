package mysql

import (
	"fmt"
	"strings"

	"github.com/trellis-db/trellis/internal/types"
)

// CreateTableSQL renders one CREATE TABLE statement. Indexes go inline
// as KEY clauses because MySQL has no CREATE INDEX IF NOT EXISTS, and
// inline keys make the table-level IF NOT EXISTS cover them.
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

	for _, index := range def.Indexes {
		columns := make([]string, len(index.Columns))
		for i, col := range index.Columns {
			columns[i] = c.QuoteIdentifier(col)
		}
		key := "KEY"
		if index.Unique {
			key = "UNIQUE KEY"
		}
		constraints = append(constraints, fmt.Sprintf("  %s %s (%s)",
			key, c.QuoteIdentifier(index.Name), strings.Join(columns, ", ")))
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

	lines = append(lines, ") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return []string{strings.Join(lines, "\n")}
}

func (c *Client) formatColumn(column types.ColumnDef) string {
	parts := []string{c.columnType(column)}

	if column.Primary {
		parts = append(parts, "PRIMARY KEY")
	}
	if column.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
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

	return strings.Join(parts, " ")
}

func (c *Client) columnType(column types.ColumnDef) string {
	var base string
	switch column.Kind {
	case types.KindInteger:
		base = "INT"
	case types.KindSmallInt:
		base = "TINYINT"
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
		return "TINYINT(1)"
	case types.KindTimestamp:
		return "DATETIME"
	case types.KindJSON, types.KindArray:
		return "JSON"
	case types.KindEnum:
		return fmt.Sprintf("ENUM(%s)", quoteValues(column.Values))
	default:
		base = strings.ToUpper(string(column.Kind))
	}
	if column.Unsigned {
		base += " UNSIGNED"
	}
	return base
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
