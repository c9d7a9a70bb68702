package ddl

import (
	"context"
	"fmt"

	"github.com/trellis-db/trellis/internal/database/common"
	"github.com/trellis-db/trellis/internal/depgraph"
	"github.com/trellis-db/trellis/internal/schema"
	"github.com/trellis-db/trellis/internal/types"
)

// Client is the slice of the database client the DDL pass uses.
type Client interface {
	Begin(ctx context.Context) (common.Tx, error)
	CreateTableSQL(def types.TableDef) []string
}

// Events receives progress notifications from the DDL pass.
type Events interface {
	TableCreated(name string)
}

type nopEvents struct{}

func (nopEvents) TableCreated(string) {}

// Applier creates the document's tables on one client.
type Applier struct {
	client Client
	events Events
}

func NewApplier(client Client, events Events) *Applier {
	if events == nil {
		events = nopEvents{}
	}
	return &Applier{client: client, events: events}
}

// Apply expands every table, orders them by their foreign-key edges and
// runs all DDL inside a single transaction. Any statement failure rolls
// the whole pass back.
func (a *Applier) Apply(ctx context.Context, doc *schema.Document) error {
	order, defs, err := Plan(doc)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return nil
	}

	tx, err := a.client.Begin(ctx)
	if err != nil {
		return err
	}

	for _, name := range order {
		for _, stmt := range a.client.CreateTableSQL(defs[name]) {
			if err := tx.Exec(ctx, stmt); err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to create table %s: %w", name, err)
			}
		}
		a.events.TableCreated(name)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit table creation: %w", err)
	}
	return nil
}

// Plan expands and orders the document's tables without touching a
// database. The dry-run command prints exactly this.
func Plan(doc *schema.Document) ([]string, map[string]types.TableDef, error) {
	order, err := depgraph.Tables(doc).Order()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to order tables: %w", err)
	}

	defs := make(map[string]types.TableDef, len(order))
	for _, name := range order {
		table := doc.Tables[name]
		if table == nil {
			continue
		}
		def, err := Expand(table)
		if err != nil {
			return nil, nil, err
		}
		defs[name] = def
	}
	return order, defs, nil
}
