package schema

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Marker
	}{
		{"string literal", "hello", MarkerLiteral},
		{"int literal", 42, MarkerLiteral},
		{"nil literal", nil, MarkerLiteral},
		{"empty map", map[string]any{}, MarkerLiteral},
		{"where marker", map[string]any{"where": map[string]any{"slug": "admin"}}, MarkerWhere},
		{"where with extra key", map[string]any{"where": map[string]any{}, "x": 1}, MarkerLiteral},
		{"where non-map predicate", map[string]any{"where": "admin"}, MarkerLiteral},
		{"hash marker", map[string]any{"hash": "secret"}, MarkerHash},
		{"hash non-string", map[string]any{"hash": 42}, MarkerLiteral},
		{"locale map", map[string]any{"en": "Hello", "pt": "Olá"}, MarkerLocale},
		{"locale single key", map[string]any{"en": "Hello"}, MarkerLocale},
		{"locale mixed keys", map[string]any{"en": "Hello", "name": "x"}, MarkerLiteral},
		{"three letter keys", map[string]any{"eng": "Hello"}, MarkerLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWherePredicate(t *testing.T) {
	pred, ok := WherePredicate(map[string]any{"where": map[string]any{"slug": "admin"}})
	if !ok {
		t.Fatal("where marker not recognized")
	}
	if pred["slug"] != "admin" {
		t.Errorf("predicate = %v", pred)
	}

	if _, ok := WherePredicate(map[string]any{"slug": "admin"}); ok {
		t.Error("plain map should not be a where marker")
	}
}

func TestIsLocaleCode(t *testing.T) {
	for code, want := range map[string]bool{
		"en": true, "PT": true, "fr": true,
		"e1": false, "eng": false, "e": false, "": false, "é2": false,
	} {
		if got := IsLocaleCode(code); got != want {
			t.Errorf("IsLocaleCode(%q) = %v, want %v", code, got, want)
		}
	}
}
