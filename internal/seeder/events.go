package seeder

// Events receives progress and diagnostics from a seeding run. The CLI
// installs a color-printing implementation; tests record calls.
type Events interface {
	// GroupStarted fires once per data group before its rows insert.
	GroupStarted(table string, rows int)

	// RowInserted reports a successful insert with the generated keys.
	RowInserted(table string, keys map[string]any)

	// RowFailed reports a row-level failure. The run continues.
	RowFailed(table string, err error)

	// LookupUnresolved reports an indirect reference that resolved to
	// null: zero or multiple matches, or no foreign key on the column.
	LookupUnresolved(table, column string, matches int)

	// TranslationWritten reports one locale fan-out row.
	TranslationWritten(table, locale string)
}

// NopEvents discards every notification.
type NopEvents struct{}

func (NopEvents) GroupStarted(string, int)             {}
func (NopEvents) RowInserted(string, map[string]any)   {}
func (NopEvents) RowFailed(string, error)              {}
func (NopEvents) LookupUnresolved(string, string, int) {}
func (NopEvents) TranslationWritten(string, string)    {}
