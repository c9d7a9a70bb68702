package seeder

import (
	"context"
	"fmt"
	"sort"

	"github.com/jinzhu/inflection"

	"github.com/trellis-db/trellis/internal/database"
)

// translationTable derives the translation table for a parent table:
// singular stem plus the configured suffix, so categories fan out into
// category_translations.
func (a *Applier) translationTable(parent string) string {
	return inflection.Singular(parent) + a.opts.TranslationSuffix
}

// insertTranslations writes a row's locale-marked values grouped by
// locale: one translation row per code, carrying every translated
// column. The parent and locale columns are discovered from the
// translation table's foreign keys.
func (a *Applier) insertTranslations(ctx context.Context, parent string, parentKeys map[string]any, translations map[string]map[string]any) error {
	table := a.translationTable(parent)

	parentRel, err := database.OneToMany(ctx, a.cache, parent, table)
	if err != nil {
		return fmt.Errorf("failed to locate parent column on %s: %w", table, err)
	}
	localeColumn, err := database.RelationColumn(ctx, a.cache, a.opts.LocaleTable, table)
	if err != nil {
		return fmt.Errorf("failed to locate locale column on %s: %w", table, err)
	}
	parentID, err := a.parentKeyValue(ctx, parent, parentKeys, parentRel.ReferencedColumn)
	if err != nil {
		return err
	}

	codes := make([]string, 0, len(translations))
	for code := range translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		localeID, err := a.localeID(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to translate %s: %w", parent, err)
		}
		columns := []string{parentRel.Column, localeColumn}
		values := []any{parentID, localeID}
		for _, column := range sortedKeys(translations[code]) {
			columns = append(columns, column)
			values = append(values, translations[code][column])
		}
		if _, err := a.insert(ctx, table, columns, values); err != nil {
			return err
		}
		a.events.TranslationWritten(table, code)
	}
	return nil
}

// localeID maps a 2-letter code to its primary key. The whole locale
// table loads once per run.
func (a *Applier) localeID(ctx context.Context, code string) (any, error) {
	if a.locales == nil {
		if err := a.loadLocales(ctx); err != nil {
			return nil, err
		}
	}
	id, ok := a.locales[code]
	if !ok {
		return nil, fmt.Errorf("unknown locale code %q in %s", code, a.opts.LocaleTable)
	}
	return id, nil
}

func (a *Applier) loadLocales(ctx context.Context) error {
	if !validIdentifier.MatchString(a.opts.LocaleTable) || !validIdentifier.MatchString(a.opts.LocaleColumn) {
		return fmt.Errorf("invalid locale table or column name: %s.%s", a.opts.LocaleTable, a.opts.LocaleColumn)
	}
	pks, err := a.cache.PrimaryKeys(ctx, a.opts.LocaleTable)
	if err != nil {
		return fmt.Errorf("failed to read primary keys of %s: %w", a.opts.LocaleTable, err)
	}
	if len(pks) == 0 {
		return fmt.Errorf("locale table %s has no primary key", a.opts.LocaleTable)
	}
	pk := pks[0]

	query, args, err := a.client.Builder().
		Select(a.client.QuoteIdentifier(pk), a.client.QuoteIdentifier(a.opts.LocaleColumn)).
		From(a.client.QuoteIdentifier(a.opts.LocaleTable)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build locale query: %w", err)
	}
	result, err := a.client.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load locales from %s: %w", a.opts.LocaleTable, err)
	}

	a.locales = make(map[string]any, len(result.Rows))
	for _, row := range result.Rows {
		code, ok := row[a.opts.LocaleColumn].(string)
		if !ok {
			continue
		}
		a.locales[code] = row[pk]
	}
	return nil
}

// parentKeyValue pulls the parent row's key that child foreign keys
// point at, falling back to the first primary key.
func (a *Applier) parentKeyValue(ctx context.Context, table string, keys map[string]any, refColumn string) (any, error) {
	if value, ok := keys[refColumn]; ok {
		return value, nil
	}
	pks, err := a.cache.PrimaryKeys(ctx, table)
	if err == nil && len(pks) > 0 {
		if value, ok := keys[pks[0]]; ok {
			return value, nil
		}
	}
	return nil, fmt.Errorf("no generated key available for %s", table)
}
