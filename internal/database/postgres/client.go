// Package postgres implements the database client on top of a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trellis-db/trellis/internal/database/common"
)

type Client struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Client {
	return &Client{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (c *Client) Dialect() string {
	return "postgres"
}

func (c *Client) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	c.pool = pool
	return nil
}

func (c *Client) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Builder() squirrel.StatementBuilderType {
	return c.qb
}

func (c *Client) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (c *Client) Query(ctx context.Context, query string, args ...any) (*common.QueryResult, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

func (c *Client) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *Client) Begin(ctx context.Context) (common.Tx, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// Insert adds one row and reads keyColumns back through RETURNING.
func (c *Client) Insert(ctx context.Context, table string, columns []string, values []any, keyColumns []string) (map[string]any, error) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.QuoteIdentifier(col)
	}

	builder := c.qb.Insert(c.QuoteIdentifier(table)).Columns(quoted...).Values(values...)
	if len(keyColumns) > 0 {
		keys := make([]string, len(keyColumns))
		for i, key := range keyColumns {
			keys[i] = c.QuoteIdentifier(key)
		}
		builder = builder.Suffix("RETURNING " + strings.Join(keys, ", "))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	if len(keyColumns) == 0 {
		if _, err := c.Exec(ctx, query, args...); err != nil {
			return nil, err
		}
		return nil, nil
	}

	result, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	row, ok := result.First()
	if !ok {
		return nil, fmt.Errorf("insert into %s returned no row", table)
	}
	return row, nil
}

func collectRows(rows pgx.Rows) (*common.QueryResult, error) {
	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = string(fd.Name)
	}

	var results []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any)
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &common.QueryResult{
		Columns: columns,
		Rows:    results,
	}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.Exec(ctx, query, args...)
	return err
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
