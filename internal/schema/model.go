package schema

// Document is the merged in-memory form of a schema description: table
// definitions, seed data groups, and the auxiliary screen/route sections.
type Document struct {
	Tables  map[string]*Table
	Data    map[string][]Row
	Screens map[string]Screen
	Routes  []Route
}

type Table struct {
	Name        string   `yaml:"-" json:"-"`
	Columns     []Column `yaml:"columns" json:"columns"`
	Indices     []Index  `yaml:"indices" json:"indices"`
	IfNotExists bool     `yaml:"if_not_exists" json:"if_not_exists"`
}

// Column as authored. Name may be empty when the type tag implies one
// (primary_key, slug, order, created_at, updated_at, deleted_at).
type Column struct {
	Name       string     `yaml:"name" json:"name"`
	Type       string     `yaml:"type" json:"type"`
	Length     int        `yaml:"length" json:"length"`
	Scale      int        `yaml:"scale" json:"scale"`
	Values     []string   `yaml:"values" json:"values"`
	Nullable   *bool      `yaml:"nullable" json:"nullable"`
	Default    any        `yaml:"default" json:"default"`
	Primary    bool       `yaml:"primary" json:"primary"`
	Unique     bool       `yaml:"unique" json:"unique"`
	References *Reference `yaml:"references" json:"references"`
}

type Reference struct {
	Table    string `yaml:"table" json:"table"`
	Column   string `yaml:"column" json:"column"`
	OnDelete string `yaml:"on_delete" json:"on_delete"`
	OnUpdate string `yaml:"on_update" json:"on_update"`
}

type Index struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns" json:"columns"`
	Unique  bool     `yaml:"unique" json:"unique"`
}

// Row is one seed row. Values may be literals or markers (see marker.go);
// the reserved "relations" key maps child table names to nested rows.
type Row map[string]any

type Screen struct {
	Title     map[string]string `yaml:"title" json:"title"`
	Menu      bool              `yaml:"menu" json:"menu"`
	Relations []string          `yaml:"relations" json:"relations"`
}

type Route struct {
	Path      string  `yaml:"path" json:"path"`
	Component string  `yaml:"component" json:"component"`
	Lazy      string  `yaml:"lazy" json:"lazy"`
	Children  []Route `yaml:"children" json:"children"`
}

// RelationsKey is the reserved row key holding nested relation rows.
const RelationsKey = "relations"

// defaultNames maps type tags to the column name they imply.
var defaultNames = map[string]string{
	"primary_key": "id",
	"slug":        "slug",
	"order":       "order",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"deleted_at":  "deleted_at",
}

// EffectiveName returns the column's name, falling back to the name its
// type tag implies. Empty when neither is set.
func (c Column) EffectiveName() string {
	if c.Name != "" {
		return c.Name
	}
	return defaultNames[c.Type]
}

// Column returns the named column of the table, matching on effective
// names, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].EffectiveName() == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ReferenceTarget returns the table referenced by the named column, or ""
// when the column has no references attribute.
func (t *Table) ReferenceTarget(column string) string {
	c := t.Column(column)
	if c == nil || c.References == nil {
		return ""
	}
	return c.References.Table
}
