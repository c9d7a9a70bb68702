package types

// ColumnKind is the concrete storage kind a schema type tag expands to.
// Dialect clients map kinds onto their own SQL type names.
type ColumnKind string

const (
	KindInteger   ColumnKind = "integer"
	KindSmallInt  ColumnKind = "smallint"
	KindVarchar   ColumnKind = "varchar"
	KindChar      ColumnKind = "char"
	KindText      ColumnKind = "text"
	KindDecimal   ColumnKind = "decimal"
	KindBoolean   ColumnKind = "boolean"
	KindTimestamp ColumnKind = "timestamp"
	KindJSON      ColumnKind = "json"
	KindArray     ColumnKind = "array"
	KindEnum      ColumnKind = "enum"
)

// TableDef is a fully expanded table ready for DDL generation. Every
// implicit attribute (names, defaults, nullability) has been resolved.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	Indexes     []IndexDef
	IfNotExists bool
}

type ColumnDef struct {
	Name          string
	Kind          ColumnKind
	Length        int
	Scale         int
	Values        []string
	Nullable      bool
	Default       string
	Unsigned      bool
	AutoIncrement bool
	Primary       bool
	Unique        bool
	References    *ForeignKey
}

type IndexDef struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// ForeignKey describes one foreign-key constraint, either declared in a
// schema document or read back from the database catalog.
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
	OnUpdate         string
}

// Relation is a resolved one-to-many shape: Column lives in Table and
// references ReferencedColumn of ReferencedTable.
type Relation struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Junction is a resolved many-to-many shape. OriginColumn references the
// owning side, DestinationColumn the related side.
type Junction struct {
	Table             string
	OriginColumn      string
	DestinationColumn string
}
