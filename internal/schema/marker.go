package schema

// Marker is the classification of one row value. Exactly one applies per
// value; classification order is where > locale > hash > literal (the
// relations key is handled before values are classified).
type Marker int

const (
	MarkerLiteral Marker = iota
	MarkerWhere
	MarkerLocale
	MarkerHash
)

// Classify determines how a row value must be applied.
func Classify(v any) Marker {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return MarkerLiteral
	}
	if _, ok := WherePredicate(v); ok {
		return MarkerWhere
	}
	if _, ok := LocaleMap(v); ok {
		return MarkerLocale
	}
	if _, ok := HashPlaintext(v); ok {
		return MarkerHash
	}
	return MarkerLiteral
}

// WherePredicate unwraps an indirect-reference marker { where: {...} }.
func WherePredicate(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, false
	}
	inner, ok := m["where"]
	if !ok {
		return nil, false
	}
	pred, ok := inner.(map[string]any)
	return pred, ok
}

// HashPlaintext unwraps a hash marker { hash: "plaintext" }.
func HashPlaintext(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	inner, ok := m["hash"]
	if !ok {
		return "", false
	}
	s, ok := inner.(string)
	return s, ok
}

// LocaleMap unwraps a locale fan-out marker: a non-empty map whose every
// key is a two-letter locale code.
func LocaleMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !IsLocaleCode(k) {
			return nil, false
		}
	}
	return m, true
}

// IsLocaleCode reports whether s is a two-letter locale code.
func IsLocaleCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
