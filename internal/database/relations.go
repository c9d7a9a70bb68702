package database

import (
	"context"
	"fmt"

	"github.com/trellis-db/trellis/internal/types"
)

// ReferencedTable resolves the table a column points at through its
// foreign key. It returns "" when the column carries no foreign key.
func ReferencedTable(ctx context.Context, src Introspector, table, column string) (string, error) {
	fks, err := src.ForeignKeys(ctx, table)
	if err != nil {
		return "", fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	for _, fk := range fks {
		if fk.Column == column {
			return fk.ReferencedTable, nil
		}
	}
	return "", nil
}

// RelationColumn finds the column on child that references owner. This is
// the column the seeder fills with the parent id when it inserts nested
// child rows.
func RelationColumn(ctx context.Context, src Introspector, owner, child string) (string, error) {
	rel, err := OneToMany(ctx, src, owner, child)
	if err != nil {
		return "", err
	}
	return rel.Column, nil
}

// OneToMany describes the foreign key from child to owner.
func OneToMany(ctx context.Context, src Introspector, owner, child string) (*types.Relation, error) {
	fks, err := src.ForeignKeys(ctx, child)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", child, err)
	}
	for _, fk := range fks {
		if fk.ReferencedTable == owner {
			return &types.Relation{
				Table:            child,
				Column:           fk.Column,
				ReferencedTable:  owner,
				ReferencedColumn: fk.ReferencedColumn,
			}, nil
		}
	}
	return nil, fmt.Errorf("no foreign key from %s to %s", child, owner)
}

// ManyToMany locates the junction table linking origin and destination:
// the table whose foreign keys reference both. Tables are scanned in
// ListTables order and the first match wins.
func ManyToMany(ctx context.Context, src Introspector, origin, destination string) (*types.Junction, error) {
	tables, err := src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		if table == origin || table == destination {
			continue
		}
		fks, err := src.ForeignKeys(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
		var originColumn, destinationColumn string
		for _, fk := range fks {
			if fk.ReferencedTable == origin && originColumn == "" {
				originColumn = fk.Column
				continue
			}
			if fk.ReferencedTable == destination && destinationColumn == "" {
				destinationColumn = fk.Column
			}
		}
		if originColumn != "" && destinationColumn != "" {
			return &types.Junction{
				Table:             table,
				OriginColumn:      originColumn,
				DestinationColumn: destinationColumn,
			}, nil
		}
	}
	return nil, fmt.Errorf("no junction table linking %s and %s", origin, destination)
}
