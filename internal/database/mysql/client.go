// Package mysql implements the database client on top of database/sql
// with the go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"

	"github.com/trellis-db/trellis/internal/database/common"
)

type Client struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Client {
	return &Client{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (c *Client) Dialect() string {
	return "mysql"
}

func (c *Client) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("mysql", toDSN(url))
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	c.db = db
	return nil
}

// toDSN rewrites a mysql:// URL into the driver's DSN form, mapping the
// ssl-mode parameter onto the driver's tls option.
func toDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	atIndex := strings.Index(dsn, "@")
	if atIndex <= 0 {
		return dsn
	}
	credentials := dsn[:atIndex]
	remainder := dsn[atIndex+1:]

	slashIndex := strings.Index(remainder, "/")
	if slashIndex <= 0 {
		return dsn
	}
	hostPort := remainder[:slashIndex]
	dbAndParams := remainder[slashIndex+1:]

	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=REQUIRED", "tls=skip-verify")
	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=DISABLED", "tls=false")
	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=VERIFY_CA", "tls=true")
	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=VERIFY_IDENTITY", "tls=true")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=verify-ca", "tls=true")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=verify-full", "tls=true")

	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Builder() squirrel.StatementBuilderType {
	return c.qb
}

func (c *Client) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (c *Client) Query(ctx context.Context, query string, args ...any) (*common.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any)
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
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

func (c *Client) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *Client) Begin(ctx context.Context) (common.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// Insert adds one row. Keys the statement supplies are echoed back; a
// single missing key column is filled from the generated id.
func (c *Client) Insert(ctx context.Context, table string, columns []string, values []any, keyColumns []string) (map[string]any, error) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.QuoteIdentifier(col)
	}

	query, args, err := c.qb.Insert(c.QuoteIdentifier(table)).Columns(quoted...).Values(values...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(keyColumns) == 0 {
		return nil, nil
	}

	keys := make(map[string]any, len(keyColumns))
	missing := make([]string, 0, 1)
	for _, key := range keyColumns {
		supplied := false
		for i, col := range columns {
			if col == key {
				keys[key] = values[i]
				supplied = true
				break
			}
		}
		if !supplied {
			missing = append(missing, key)
		}
	}
	if len(missing) == 1 {
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read generated id for %s: %w", table, err)
		}
		keys[missing[0]] = id
	}
	return keys, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
