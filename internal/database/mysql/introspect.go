package mysql

import (
	"context"
	"fmt"

	"github.com/trellis-db/trellis/internal/types"
)

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0, 32)
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

func (c *Client) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?
	`, table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

func (c *Client) HasColumn(ctx context.Context, table, column string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check column %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

func (c *Client) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT column_name FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary keys of %s: %w", table, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, err
		}
		keys = append(keys, column)
	}
	return keys, rows.Err()
}

func (c *Client) ForeignKeys(ctx context.Context, table string) ([]types.ForeignKey, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT
			k.column_name,
			k.referenced_table_name,
			k.referenced_column_name,
			COALESCE(r.delete_rule, 'NO ACTION'),
			COALESCE(r.update_rule, 'NO ACTION')
		FROM information_schema.key_column_usage k
		LEFT JOIN information_schema.referential_constraints r
			ON k.constraint_name = r.constraint_name
			AND k.table_schema = r.constraint_schema
		WHERE k.table_schema = DATABASE()
			AND k.table_name = ?
			AND k.referenced_table_name IS NOT NULL
		ORDER BY k.ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []types.ForeignKey
	for rows.Next() {
		var fk types.ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.OnDelete, &fk.OnUpdate); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
