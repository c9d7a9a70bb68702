// Package seeder applies the seed data of a schema document to a live
// database: groups run in dependency order, markers resolve against
// previously inserted rows, and failures are reported row by row.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/trellis-db/trellis/internal/database"
	"github.com/trellis-db/trellis/internal/database/common"
	"github.com/trellis-db/trellis/internal/depgraph"
	"github.com/trellis-db/trellis/internal/schema"
)

// validIdentifier guards table and column names lifted from the schema
// document before they reach generated SQL.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Client is the slice of the database client the seeder uses.
type Client interface {
	Builder() sq.StatementBuilderType
	QuoteIdentifier(name string) string
	Query(ctx context.Context, query string, args ...any) (*common.QueryResult, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Insert(ctx context.Context, table string, columns []string, values []any, keyColumns []string) (map[string]any, error)
	database.Introspector
}

// Options carry the naming conventions of a run.
type Options struct {
	LocaleTable       string
	LocaleColumn      string
	TranslationSuffix string
}

func (o *Options) fill() {
	if o.LocaleTable == "" {
		o.LocaleTable = "locales"
	}
	if o.LocaleColumn == "" {
		o.LocaleColumn = "code"
	}
	if o.TranslationSuffix == "" {
		o.TranslationSuffix = "_translations"
	}
}

// Applier seeds one document through one client. All per-run state,
// the introspection cache and the locale ids, lives here.
type Applier struct {
	client  Client
	doc     *schema.Document
	events  Events
	opts    Options
	cache   *database.Cache
	locales map[string]any
}

func NewApplier(client Client, doc *schema.Document, events Events, opts Options) *Applier {
	if events == nil {
		events = NopEvents{}
	}
	opts.fill()
	return &Applier{
		client: client,
		doc:    doc,
		events: events,
		opts:   opts,
		cache:  database.NewCache(client),
	}
}

// Apply inserts every data group in dependency order. A failing row is
// reported through the events sink and skipped; the run continues.
func (a *Applier) Apply(ctx context.Context) error {
	order, err := depgraph.Data(a.doc).Order()
	if err != nil {
		return fmt.Errorf("failed to order seed data: %w", err)
	}

	for _, table := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, ok := a.doc.Data[table]
		if !ok {
			continue
		}
		if !validIdentifier.MatchString(table) {
			a.events.RowFailed(table, fmt.Errorf("invalid table name: %s", table))
			continue
		}
		a.events.GroupStarted(table, len(rows))
		for _, row := range depgraph.SortRows(rows) {
			if err := a.insertRow(ctx, table, row, nil); err != nil {
				a.events.RowFailed(table, err)
			}
		}
	}
	return nil
}

// insertRow resolves one row's markers, inserts it, and then writes its
// translations and relations. extra carries columns injected by a
// parent row, typically the foreign key back to it.
func (a *Applier) insertRow(ctx context.Context, table string, row schema.Row, extra map[string]any) error {
	columns := make([]string, 0, len(row))
	values := make([]any, 0, len(row))
	var translations map[string]map[string]any
	var relations any

	for _, key := range sortedKeys(row) {
		value := row[key]
		if key == schema.RelationsKey {
			relations = value
			continue
		}
		if !validIdentifier.MatchString(key) {
			return fmt.Errorf("invalid column name in %s: %s", table, key)
		}
		switch schema.Classify(value) {
		case schema.MarkerWhere:
			resolved, err := a.resolveReference(ctx, table, key, value)
			if err != nil {
				return err
			}
			columns = append(columns, key)
			values = append(values, resolved)
		case schema.MarkerLocale:
			locales, _ := schema.LocaleMap(value)
			if translations == nil {
				translations = make(map[string]map[string]any)
			}
			for code, text := range locales {
				if translations[code] == nil {
					translations[code] = make(map[string]any)
				}
				translations[code][key] = text
			}
		case schema.MarkerHash:
			plaintext, _ := schema.HashPlaintext(value)
			encoded, err := HashPassword(plaintext)
			if err != nil {
				return fmt.Errorf("failed to hash value for %s.%s: %w", table, key, err)
			}
			columns = append(columns, key)
			values = append(values, encoded)
		default:
			columns = append(columns, key)
			values = append(values, literalValue(value))
		}
	}

	for _, key := range sortedKeys(extra) {
		if !containsColumn(columns, key) {
			columns = append(columns, key)
			values = append(values, extra[key])
		}
	}

	if orderCol := a.orderColumn(table); orderCol != "" && !containsColumn(columns, orderCol) {
		next, err := a.nextOrderValue(ctx, table, orderCol, columns, values)
		if err != nil {
			return err
		}
		columns = append(columns, orderCol)
		values = append(values, next)
	}

	keys, err := a.insert(ctx, table, columns, values)
	if err != nil {
		return err
	}
	a.events.RowInserted(table, keys)

	if len(translations) > 0 {
		if err := a.insertTranslations(ctx, table, keys, translations); err != nil {
			return err
		}
	}
	if relations != nil {
		if err := a.applyRelations(ctx, table, keys, relations); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) insert(ctx context.Context, table string, columns []string, values []any) (map[string]any, error) {
	pks, err := a.cache.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary keys of %s: %w", table, err)
	}
	keys, err := a.client.Insert(ctx, table, columns, values, pks)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s (%s): %w", table, formatRow(columns, values), err)
	}
	return keys, nil
}

// Truncate clears the seed target tables in reverse dependency order,
// after first clearing introspected tables that reference them, such as
// junction and translation tables. DELETE is used instead of TRUNCATE
// because MySQL refuses to truncate a parent with referencing children
// even when they are empty.
func (a *Applier) Truncate(ctx context.Context) error {
	order, err := depgraph.Data(a.doc).Order()
	if err != nil {
		return fmt.Errorf("failed to order seed data: %w", err)
	}

	seeded := make(map[string]bool, len(order))
	for _, table := range order {
		seeded[table] = true
	}

	tables, err := a.cache.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	var referencers []string
	for _, table := range tables {
		if seeded[table] {
			continue
		}
		fks, err := a.cache.ForeignKeys(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
		for _, fk := range fks {
			if seeded[fk.ReferencedTable] {
				referencers = append(referencers, table)
				break
			}
		}
	}
	sort.Strings(referencers)

	for _, table := range referencers {
		if err := a.clearTable(ctx, table); err != nil {
			return err
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		if err := a.clearTable(ctx, order[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) clearTable(ctx context.Context, table string) error {
	if !validIdentifier.MatchString(table) {
		return fmt.Errorf("invalid table name: %s", table)
	}
	if _, err := a.client.Exec(ctx, "DELETE FROM "+a.client.QuoteIdentifier(table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return nil
}

// literalValue converts nested structures to JSON text so json columns
// seed the same on both dialects.
func literalValue(value any) any {
	switch value.(type) {
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return value
		}
		return string(encoded)
	}
	return value
}

func formatRow(columns []string, values []any) string {
	pairs := make([]string, len(columns))
	for i, col := range columns {
		pairs[i] = fmt.Sprintf("%s=%v", col, values[i])
	}
	return strings.Join(pairs, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func containsColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}
