package seeder

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/trellis-db/trellis/internal/database"
	"github.com/trellis-db/trellis/internal/schema"
)

// operators maps predicate operator names to squirrel conditions. in
// and nin take list values and become IN / NOT IN through Eq's slice
// handling.
var operators = map[string]func(column string, value any) sq.Sqlizer{
	"eq":    func(c string, v any) sq.Sqlizer { return sq.Eq{c: v} },
	"ne":    func(c string, v any) sq.Sqlizer { return sq.NotEq{c: v} },
	"gt":    func(c string, v any) sq.Sqlizer { return sq.Gt{c: v} },
	"lt":    func(c string, v any) sq.Sqlizer { return sq.Lt{c: v} },
	"gte":   func(c string, v any) sq.Sqlizer { return sq.GtOrEq{c: v} },
	"lte":   func(c string, v any) sq.Sqlizer { return sq.LtOrEq{c: v} },
	"like":  func(c string, v any) sq.Sqlizer { return sq.Like{c: v} },
	"nlike": func(c string, v any) sq.Sqlizer { return sq.NotLike{c: v} },
	"in":    func(c string, v any) sq.Sqlizer { return sq.Eq{c: v} },
	"nin":   func(c string, v any) sq.Sqlizer { return sq.NotEq{c: v} },
}

// ValidOperator reports whether op is a recognized predicate operator.
func ValidOperator(op string) bool {
	_, ok := operators[op]
	return ok
}

// resolveReference resolves a where marker on a column to the matched
// row's first primary-key value. Zero or multiple matches, and columns
// without a discoverable foreign key, resolve to null and are flagged.
func (a *Applier) resolveReference(ctx context.Context, table, column string, raw any) (any, error) {
	where, ok := schema.WherePredicate(raw)
	if !ok {
		return nil, fmt.Errorf("malformed where marker on %s.%s", table, column)
	}

	target, err := database.ReferencedTable(ctx, a.cache, table, column)
	if err != nil {
		return nil, err
	}
	if target == "" {
		a.events.LookupUnresolved(table, column, 0)
		return nil, nil
	}

	ids, err := a.lookupKeys(ctx, target, where)
	if err != nil {
		return nil, err
	}
	if len(ids) != 1 {
		a.events.LookupUnresolved(table, column, len(ids))
		return nil, nil
	}
	return ids[0], nil
}

// lookupKeys selects the first primary-key values of every row in table
// matching the predicate.
func (a *Applier) lookupKeys(ctx context.Context, table string, where map[string]any) ([]any, error) {
	if !validIdentifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	pks, err := a.cache.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary keys of %s: %w", table, err)
	}
	if len(pks) == 0 {
		return nil, fmt.Errorf("table %s has no primary key to resolve against", table)
	}
	pk := pks[0]

	builder := a.client.Builder().
		Select(a.client.QuoteIdentifier(pk)).
		From(a.client.QuoteIdentifier(table))
	builder, err = a.applyPredicate(builder, table, where)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup for %s: %w", table, err)
	}
	result, err := a.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", table, err)
	}

	ids := make([]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		ids = append(ids, row[pk])
	}
	return ids, nil
}

func (a *Applier) applyPredicate(builder sq.SelectBuilder, table string, where map[string]any) (sq.SelectBuilder, error) {
	for _, column := range sortedKeys(where) {
		if !validIdentifier.MatchString(column) {
			return builder, fmt.Errorf("invalid column name in where on %s: %s", table, column)
		}
		quoted := a.client.QuoteIdentifier(column)
		condition := where[column]

		ops, ok := condition.(map[string]any)
		if !ok {
			builder = builder.Where(sq.Eq{quoted: condition})
			continue
		}
		for _, op := range sortedKeys(ops) {
			build, ok := operators[op]
			if !ok {
				return builder, fmt.Errorf("unknown where operator %q on %s.%s", op, table, column)
			}
			builder = builder.Where(build(quoted, ops[op]))
		}
	}
	return builder, nil
}
