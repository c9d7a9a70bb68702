package database

import (
	"context"
	"testing"

	"github.com/trellis-db/trellis/internal/types"
)

type fakeIntrospector struct {
	tables []string
	pks    map[string][]string
	fks    map[string][]types.ForeignKey

	listCalls map[string]int
}

func newFakeIntrospector() *fakeIntrospector {
	return &fakeIntrospector{
		tables: []string{"categories", "post_tags", "posts", "tags", "users"},
		pks: map[string][]string{
			"categories": {"id"},
			"posts":      {"id"},
			"tags":       {"id"},
			"users":      {"id"},
		},
		fks: map[string][]types.ForeignKey{
			"posts": {
				{Column: "author_id", ReferencedTable: "users", ReferencedColumn: "id", OnDelete: "NO ACTION"},
				{Column: "category_id", ReferencedTable: "categories", ReferencedColumn: "id", OnDelete: "CASCADE"},
			},
			"post_tags": {
				{Column: "post_id", ReferencedTable: "posts", ReferencedColumn: "id", OnDelete: "CASCADE"},
				{Column: "tag_id", ReferencedTable: "tags", ReferencedColumn: "id", OnDelete: "CASCADE"},
			},
		},
		listCalls: make(map[string]int),
	}
}

func (f *fakeIntrospector) ListTables(ctx context.Context) ([]string, error) {
	f.listCalls["tables"]++
	return f.tables, nil
}

func (f *fakeIntrospector) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	f.listCalls["pks:"+table]++
	return f.pks[table], nil
}

func (f *fakeIntrospector) ForeignKeys(ctx context.Context, table string) ([]types.ForeignKey, error) {
	f.listCalls["fks:"+table]++
	return f.fks[table], nil
}

func TestReferencedTable(t *testing.T) {
	src := newFakeIntrospector()
	ctx := context.Background()

	table, err := ReferencedTable(ctx, src, "posts", "author_id")
	if err != nil {
		t.Fatalf("ReferencedTable() error = %v", err)
	}
	if table != "users" {
		t.Errorf("ReferencedTable() = %q, want %q", table, "users")
	}

	table, err = ReferencedTable(ctx, src, "posts", "title")
	if err != nil {
		t.Fatalf("ReferencedTable() error = %v", err)
	}
	if table != "" {
		t.Errorf("ReferencedTable() for plain column = %q, want empty", table)
	}
}

func TestOneToMany(t *testing.T) {
	src := newFakeIntrospector()
	ctx := context.Background()

	rel, err := OneToMany(ctx, src, "users", "posts")
	if err != nil {
		t.Fatalf("OneToMany() error = %v", err)
	}
	if rel.Column != "author_id" {
		t.Errorf("relation column = %q, want %q", rel.Column, "author_id")
	}
	if rel.ReferencedColumn != "id" {
		t.Errorf("referenced column = %q, want %q", rel.ReferencedColumn, "id")
	}

	if _, err := OneToMany(ctx, src, "tags", "users"); err == nil {
		t.Error("OneToMany() for unrelated tables should fail")
	}
}

func TestRelationColumn(t *testing.T) {
	src := newFakeIntrospector()

	column, err := RelationColumn(context.Background(), src, "categories", "posts")
	if err != nil {
		t.Fatalf("RelationColumn() error = %v", err)
	}
	if column != "category_id" {
		t.Errorf("RelationColumn() = %q, want %q", column, "category_id")
	}
}

func TestManyToMany(t *testing.T) {
	src := newFakeIntrospector()
	ctx := context.Background()

	junction, err := ManyToMany(ctx, src, "posts", "tags")
	if err != nil {
		t.Fatalf("ManyToMany() error = %v", err)
	}
	if junction.Table != "post_tags" {
		t.Errorf("junction table = %q, want %q", junction.Table, "post_tags")
	}
	if junction.OriginColumn != "post_id" {
		t.Errorf("origin column = %q, want %q", junction.OriginColumn, "post_id")
	}
	if junction.DestinationColumn != "tag_id" {
		t.Errorf("destination column = %q, want %q", junction.DestinationColumn, "tag_id")
	}

	// Reversed direction finds the same table with the columns swapped.
	junction, err = ManyToMany(ctx, src, "tags", "posts")
	if err != nil {
		t.Fatalf("ManyToMany() reversed error = %v", err)
	}
	if junction.OriginColumn != "tag_id" || junction.DestinationColumn != "post_id" {
		t.Errorf("reversed junction = %+v, want tag_id/post_id", junction)
	}

	if _, err := ManyToMany(ctx, src, "users", "tags"); err == nil {
		t.Error("ManyToMany() without a junction table should fail")
	}
}

func TestCacheMemoizes(t *testing.T) {
	src := newFakeIntrospector()
	cache := NewCache(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.ListTables(ctx); err != nil {
			t.Fatalf("ListTables() error = %v", err)
		}
		if _, err := cache.ForeignKeys(ctx, "posts"); err != nil {
			t.Fatalf("ForeignKeys() error = %v", err)
		}
		if _, err := cache.PrimaryKeys(ctx, "users"); err != nil {
			t.Fatalf("PrimaryKeys() error = %v", err)
		}
	}

	if got := src.listCalls["tables"]; got != 1 {
		t.Errorf("ListTables hit source %d times, want 1", got)
	}
	if got := src.listCalls["fks:posts"]; got != 1 {
		t.Errorf("ForeignKeys hit source %d times, want 1", got)
	}
	if got := src.listCalls["pks:users"]; got != 1 {
		t.Errorf("PrimaryKeys hit source %d times, want 1", got)
	}
}

func TestCacheCachesEmptyResults(t *testing.T) {
	src := newFakeIntrospector()
	cache := NewCache(src)
	ctx := context.Background()

	// tags has no foreign keys; the empty answer must be cached too.
	for i := 0; i < 2; i++ {
		fks, err := cache.ForeignKeys(ctx, "tags")
		if err != nil {
			t.Fatalf("ForeignKeys() error = %v", err)
		}
		if len(fks) != 0 {
			t.Fatalf("ForeignKeys(tags) = %v, want none", fks)
		}
	}

	if got := src.listCalls["fks:tags"]; got != 1 {
		t.Errorf("ForeignKeys hit source %d times, want 1", got)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		dialect  string
		wantErr  bool
	}{
		{provider: "postgres", dialect: "postgres"},
		{provider: "postgresql", dialect: "postgres"},
		{provider: "mysql", dialect: "mysql"},
		{provider: "oracle", wantErr: true},
		{provider: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := New(tt.provider)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) should fail", tt.provider)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.provider, err)
			}
			if client.Dialect() != tt.dialect {
				t.Errorf("Dialect() = %q, want %q", client.Dialect(), tt.dialect)
			}
		})
	}
}
