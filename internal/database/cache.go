package database

import (
	"context"

	"github.com/trellis-db/trellis/internal/types"
)

// Cache memoizes introspection lookups for the duration of a run. The
// seeder asks for the same key and relation metadata once per row, so
// without this every insert would hit information_schema again.
type Cache struct {
	src    Introspector
	tables []string
	pks    map[string][]string
	fks    map[string][]types.ForeignKey
}

// NewCache wraps src with per-run memoization.
func NewCache(src Introspector) *Cache {
	return &Cache{
		src: src,
		pks: make(map[string][]string),
		fks: make(map[string][]types.ForeignKey),
	}
}

func (c *Cache) ListTables(ctx context.Context) ([]string, error) {
	if c.tables != nil {
		return c.tables, nil
	}
	tables, err := c.src.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	c.tables = tables
	return tables, nil
}

func (c *Cache) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if pks, ok := c.pks[table]; ok {
		return pks, nil
	}
	pks, err := c.src.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	c.pks[table] = pks
	return pks, nil
}

func (c *Cache) ForeignKeys(ctx context.Context, table string) ([]types.ForeignKey, error) {
	if fks, ok := c.fks[table]; ok {
		return fks, nil
	}
	fks, err := c.src.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	c.fks[table] = fks
	return fks, nil
}
