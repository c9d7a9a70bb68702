// Package common holds the result and transaction types shared by the
// dialect clients.
package common

import "context"

// QueryResult is the dialect-neutral shape of a query response.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// First returns the first row, or false when the result is empty.
func (r *QueryResult) First() (map[string]any, bool) {
	if r == nil || len(r.Rows) == 0 {
		return nil, false
	}
	return r.Rows[0], true
}

// Tx is an open database transaction. The DDL pass runs inside one so a
// failed statement rolls back every table created before it.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
