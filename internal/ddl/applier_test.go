package ddl

import (
	"context"
	"strings"
	"testing"

	"github.com/trellis-db/trellis/internal/database/common"
	"github.com/trellis-db/trellis/internal/schema"
	"github.com/trellis-db/trellis/internal/types"
)

type fakeTx struct {
	statements []string
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) error {
	if t.failOn != "" && strings.Contains(query, t.failOn) {
		return context.DeadlineExceeded
	}
	t.statements = append(t.statements, query)
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDDLClient struct {
	tx     *fakeTx
	begins int
}

func (c *fakeDDLClient) Begin(ctx context.Context) (common.Tx, error) {
	c.begins++
	return c.tx, nil
}

func (c *fakeDDLClient) CreateTableSQL(def types.TableDef) []string {
	statements := []string{"CREATE TABLE " + def.Name}
	for _, index := range def.Indexes {
		statements = append(statements, "CREATE INDEX "+index.Name)
	}
	return statements
}

type recordingDDLEvents struct {
	created []string
}

func (e *recordingDDLEvents) TableCreated(name string) {
	e.created = append(e.created, name)
}

func blogDocument() *schema.Document {
	return &schema.Document{
		Tables: map[string]*schema.Table{
			"users": {
				Name: "users",
				Columns: []schema.Column{
					{Type: "primary_key"},
					{Name: "role_id", Type: "foreign_key", References: &schema.Reference{Table: "roles"}},
				},
			},
			"roles": {
				Name:    "roles",
				Columns: []schema.Column{{Type: "primary_key"}},
				Indices: []schema.Index{{Columns: []string{"id"}}},
			},
		},
	}
}

func TestApplyOrdersAndCommits(t *testing.T) {
	tx := &fakeTx{}
	client := &fakeDDLClient{tx: tx}
	events := &recordingDDLEvents{}

	err := NewApplier(client, events).Apply(context.Background(), blogDocument())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if client.begins != 1 {
		t.Errorf("Begin called %d times, want 1", client.begins)
	}
	if !tx.committed {
		t.Error("transaction not committed")
	}

	want := []string{"CREATE TABLE roles", "CREATE INDEX idx_roles_id", "CREATE TABLE users"}
	if len(tx.statements) != len(want) {
		t.Fatalf("executed %v, want %v", tx.statements, want)
	}
	for i, stmt := range want {
		if tx.statements[i] != stmt {
			t.Errorf("statement[%d] = %q, want %q", i, tx.statements[i], stmt)
		}
	}

	if len(events.created) != 2 || events.created[0] != "roles" || events.created[1] != "users" {
		t.Errorf("events = %v, want [roles users]", events.created)
	}
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	tx := &fakeTx{failOn: "users"}
	client := &fakeDDLClient{tx: tx}

	err := NewApplier(client, nil).Apply(context.Background(), blogDocument())
	if err == nil {
		t.Fatal("Apply() should fail")
	}
	if !strings.Contains(err.Error(), "users") {
		t.Errorf("error %q does not name the failing table", err)
	}
	if !tx.rolledBack {
		t.Error("transaction not rolled back")
	}
	if tx.committed {
		t.Error("transaction must not commit after a failure")
	}
}

func TestApplyEmptyDocument(t *testing.T) {
	client := &fakeDDLClient{tx: &fakeTx{}}

	err := NewApplier(client, nil).Apply(context.Background(), &schema.Document{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if client.begins != 0 {
		t.Error("no transaction expected for an empty document")
	}
}

func TestApplyExpansionErrorBeforeTransaction(t *testing.T) {
	client := &fakeDDLClient{tx: &fakeTx{}}
	doc := &schema.Document{
		Tables: map[string]*schema.Table{
			"broken": {Name: "broken", Columns: []schema.Column{{Type: "varchar"}}},
		},
	}

	if err := NewApplier(client, nil).Apply(context.Background(), doc); err == nil {
		t.Fatal("Apply() should fail on a nameless column")
	}
	if client.begins != 0 {
		t.Error("expansion failures must be caught before opening a transaction")
	}
}

func TestPlanCycle(t *testing.T) {
	doc := &schema.Document{
		Tables: map[string]*schema.Table{
			"a": {Name: "a", Columns: []schema.Column{
				{Type: "primary_key"},
				{Name: "b_id", Type: "foreign_key", References: &schema.Reference{Table: "b"}},
			}},
			"b": {Name: "b", Columns: []schema.Column{
				{Type: "primary_key"},
				{Name: "a_id", Type: "foreign_key", References: &schema.Reference{Table: "a"}},
			}},
		},
	}

	if _, _, err := Plan(doc); err == nil {
		t.Fatal("Plan() should report the dependency cycle")
	}
}
