package seeder

import (
	"context"
	"fmt"

	"github.com/trellis-db/trellis/internal/database"
	"github.com/trellis-db/trellis/internal/schema"
)

// applyRelations walks a row's relations block. Items carrying a where
// link existing rows through a junction table; items without are child
// rows inserted with the parent's key injected.
func (a *Applier) applyRelations(ctx context.Context, parent string, parentKeys map[string]any, raw any) error {
	relations, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("relations on %s must map table names to row lists", parent)
	}

	for _, child := range sortedKeys(relations) {
		if !validIdentifier.MatchString(child) {
			return fmt.Errorf("invalid relation table name on %s: %s", parent, child)
		}
		items, ok := relations[child].([]any)
		if !ok {
			return fmt.Errorf("relations.%s on %s must be a list", child, parent)
		}
		for _, item := range items {
			row, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("relations.%s on %s holds a non-map entry", child, parent)
			}
			if where, isLink := row["where"]; isLink {
				if err := a.linkExisting(ctx, parent, parentKeys, child, where); err != nil {
					return err
				}
				continue
			}
			if err := a.insertChild(ctx, parent, parentKeys, child, schema.Row(row)); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkExisting resolves every row of child matching the predicate and
// writes one junction row per match.
func (a *Applier) linkExisting(ctx context.Context, parent string, parentKeys map[string]any, child string, rawWhere any) error {
	where, ok := rawWhere.(map[string]any)
	if !ok {
		return fmt.Errorf("where on relation %s -> %s must be a map", parent, child)
	}

	junction, err := database.ManyToMany(ctx, a.cache, parent, child)
	if err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", parent, child, err)
	}
	parentID, err := a.parentKeyValue(ctx, parent, parentKeys, "")
	if err != nil {
		return err
	}

	ids, err := a.lookupKeys(ctx, child, where)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		a.events.LookupUnresolved(junction.Table, junction.DestinationColumn, 0)
		return nil
	}

	for _, id := range ids {
		keys, err := a.insert(ctx, junction.Table,
			[]string{junction.OriginColumn, junction.DestinationColumn},
			[]any{parentID, id})
		if err != nil {
			return err
		}
		a.events.RowInserted(junction.Table, keys)
	}
	return nil
}

// insertChild inserts one nested row into child with the parent's key
// in the introspected foreign-key column, recursing through the child's
// own markers and relations.
func (a *Applier) insertChild(ctx context.Context, parent string, parentKeys map[string]any, child string, row schema.Row) error {
	rel, err := database.OneToMany(ctx, a.cache, parent, child)
	if err != nil {
		return fmt.Errorf("failed to relate %s to %s: %w", parent, child, err)
	}
	parentID, err := a.parentKeyValue(ctx, parent, parentKeys, rel.ReferencedColumn)
	if err != nil {
		return err
	}
	return a.insertRow(ctx, child, row, map[string]any{rel.Column: parentID})
}
