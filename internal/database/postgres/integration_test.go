//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/trellis-db/trellis/internal/types"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	client := New()
	if err := client.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func dropTestTables(t *testing.T, client *Client) {
	t.Helper()
	ctx := context.Background()
	client.Exec(ctx, `DROP TABLE IF EXISTS trellis_it_users CASCADE`)
	client.Exec(ctx, `DROP TABLE IF EXISTS trellis_it_roles CASCADE`)
}

func testDefs() []types.TableDef {
	return []types.TableDef{
		{
			Name: "trellis_it_roles",
			Columns: []types.ColumnDef{
				{Name: "id", Kind: types.KindInteger, AutoIncrement: true, Primary: true},
				{Name: "slug", Kind: types.KindVarchar, Length: 80},
			},
		},
		{
			Name: "trellis_it_users",
			Columns: []types.ColumnDef{
				{Name: "id", Kind: types.KindInteger, AutoIncrement: true, Primary: true},
				{Name: "email", Kind: types.KindVarchar, Length: 255},
				{Name: "role_id", Kind: types.KindInteger, Nullable: true, References: &types.ForeignKey{
					Column:           "role_id",
					ReferencedTable:  "trellis_it_roles",
					ReferencedColumn: "id",
					OnDelete:         "cascade",
				}},
			},
			Indexes: []types.IndexDef{
				{Name: "idx_trellis_it_users_email", Table: "trellis_it_users", Columns: []string{"email"}, Unique: true},
			},
		},
	}
}

func TestClientLifecycle(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	dropTestTables(t, client)
	t.Cleanup(func() { dropTestTables(t, client) })

	tx, err := client.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	for _, def := range testDefs() {
		for _, stmt := range client.CreateTableSQL(def) {
			if err := tx.Exec(ctx, stmt); err != nil {
				tx.Rollback(ctx)
				t.Fatalf("create %s: %v", def.Name, err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	exists, err := client.TableExists(ctx, "trellis_it_users")
	if err != nil || !exists {
		t.Fatalf("TableExists() = %v, %v", exists, err)
	}
	hasColumn, err := client.HasColumn(ctx, "trellis_it_users", "role_id")
	if err != nil || !hasColumn {
		t.Fatalf("HasColumn() = %v, %v", hasColumn, err)
	}

	pks, err := client.PrimaryKeys(ctx, "trellis_it_users")
	if err != nil {
		t.Fatalf("PrimaryKeys() error = %v", err)
	}
	if len(pks) != 1 || pks[0] != "id" {
		t.Errorf("PrimaryKeys() = %v, want [id]", pks)
	}

	fks, err := client.ForeignKeys(ctx, "trellis_it_users")
	if err != nil {
		t.Fatalf("ForeignKeys() error = %v", err)
	}
	if len(fks) != 1 {
		t.Fatalf("ForeignKeys() = %v, want one", fks)
	}
	if fks[0].Column != "role_id" || fks[0].ReferencedTable != "trellis_it_roles" || fks[0].ReferencedColumn != "id" {
		t.Errorf("foreign key = %+v", fks[0])
	}
	if fks[0].OnDelete != "CASCADE" {
		t.Errorf("OnDelete = %q, want CASCADE", fks[0].OnDelete)
	}

	keys, err := client.Insert(ctx, "trellis_it_roles", []string{"slug"}, []any{"admin"}, []string{"id"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	roleID, ok := keys["id"]
	if !ok || roleID == nil {
		t.Fatalf("Insert() keys = %v, want generated id", keys)
	}

	if _, err := client.Insert(ctx, "trellis_it_users",
		[]string{"email", "role_id"}, []any{"root@example.com", roleID}, []string{"id"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	query, args, err := client.Builder().
		Select(`"email"`, `"role_id"`).
		From(`"trellis_it_users"`).
		Where("\"email\" = ?", "root@example.com").
		ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	result, err := client.Query(ctx, query, args...)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	row, ok := result.First()
	if !ok {
		t.Fatal("Query() returned no rows")
	}
	if row["email"] != "root@example.com" {
		t.Errorf("email = %v", row["email"])
	}

	affected, err := client.Exec(ctx, `DELETE FROM trellis_it_users`)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("Exec() affected = %d, want 1", affected)
	}
}

func TestTransactionRollback(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	dropTestTables(t, client)
	t.Cleanup(func() { dropTestTables(t, client) })

	tx, err := client.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	for _, stmt := range client.CreateTableSQL(testDefs()[0]) {
		if err := tx.Exec(ctx, stmt); err != nil {
			t.Fatalf("Exec() error = %v", err)
		}
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	exists, err := client.TableExists(ctx, "trellis_it_roles")
	if err != nil {
		t.Fatalf("TableExists() error = %v", err)
	}
	if exists {
		t.Error("rolled-back table exists")
	}
}
