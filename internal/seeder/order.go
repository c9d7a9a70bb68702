package seeder

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

// orderColumn names the table's sequencing column when the document
// declares one, or "" when it does not.
func (a *Applier) orderColumn(table string) string {
	t, ok := a.doc.Tables[table]
	if !ok {
		return ""
	}
	for _, column := range t.Columns {
		if column.Type == "order" {
			return column.EffectiveName()
		}
	}
	return ""
}

// nextOrderValue computes the next sequence number for a row that does
// not set its order column: max + 1 among rows sharing the value of the
// table's first foreign-key column, starting at 0.
func (a *Applier) nextOrderValue(ctx context.Context, table, orderCol string, columns []string, values []any) (int64, error) {
	builder := a.client.Builder().
		Select("COALESCE(MAX(" + a.client.QuoteIdentifier(orderCol) + "), -1) + 1").
		From(a.client.QuoteIdentifier(table))

	fks, err := a.cache.ForeignKeys(ctx, table)
	if err != nil {
		return 0, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	if len(fks) > 0 {
		scope := fks[0].Column
		quoted := a.client.QuoteIdentifier(scope)
		value := columnValue(columns, values, scope)
		if value != nil {
			builder = builder.Where(sq.Eq{quoted: value})
		} else {
			builder = builder.Where(quoted + " IS NULL")
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build order query for %s: %w", table, err)
	}
	result, err := a.client.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next order for %s: %w", table, err)
	}

	row, ok := result.First()
	if !ok || len(result.Columns) == 0 {
		return 0, nil
	}
	return toInt64(row[result.Columns[0]]), nil
}

func columnValue(columns []string, values []any, name string) any {
	for i, col := range columns {
		if col == name {
			return values[i]
		}
	}
	return nil
}

// toInt64 normalizes the aggregate result across drivers: pgx returns
// typed integers, database/sql often returns numeric text.
func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}
