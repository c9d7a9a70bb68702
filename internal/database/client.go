// Package database defines the client contract the appliers talk to and
// the helpers that derive relation metadata from introspection.
package database

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trellis-db/trellis/internal/database/common"
	"github.com/trellis-db/trellis/internal/types"
)

// Supported provider names as they appear in trellis.config.json.
const (
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
)

// Client is a connection to one database. A run opens exactly one client
// and closes it when the run ends.
type Client interface {
	// Dialect returns the provider name, ProviderPostgres or ProviderMySQL.
	Dialect() string

	Connect(ctx context.Context, url string) error
	Ping(ctx context.Context) error
	Close() error

	// Builder returns a statement builder preconfigured with the dialect's
	// placeholder format ($1 for Postgres, ? for MySQL).
	Builder() sq.StatementBuilderType

	// QuoteIdentifier escapes a table or column name for direct inclusion
	// in SQL text.
	QuoteIdentifier(name string) string

	Query(ctx context.Context, query string, args ...any) (*common.QueryResult, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Begin(ctx context.Context) (common.Tx, error)

	// Insert adds one row and returns the values of keyColumns for it,
	// using RETURNING where the dialect has it and the generated-id
	// mechanism where it does not.
	Insert(ctx context.Context, table string, columns []string, values []any, keyColumns []string) (map[string]any, error)

	ListTables(ctx context.Context) ([]string, error)
	TableExists(ctx context.Context, table string) (bool, error)
	HasColumn(ctx context.Context, table, column string) (bool, error)
	PrimaryKeys(ctx context.Context, table string) ([]string, error)
	ForeignKeys(ctx context.Context, table string) ([]types.ForeignKey, error)

	// CreateTableSQL renders the DDL for one table definition. The first
	// statement is always the CREATE TABLE; any index statements follow.
	CreateTableSQL(def types.TableDef) []string
}

// Introspector is the slice of Client the relation helpers need. The
// seeder passes a caching wrapper so repeated lookups hit the database
// once per run.
type Introspector interface {
	ListTables(ctx context.Context) ([]string, error)
	PrimaryKeys(ctx context.Context, table string) ([]string, error)
	ForeignKeys(ctx context.Context, table string) ([]types.ForeignKey, error)
}
