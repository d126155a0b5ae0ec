package sheets

import (
	"fmt"
	"strings"
)

// HeaderMap maps trimmed header text to its 1-based column position within a
// tab. It is always derived fresh from row 1, never cached.
type HeaderMap map[string]int

// Column resolves a header name to its column position: exact match first,
// case-insensitive fallback second. A header absent either way is a hard
// error on read paths.
func (m HeaderMap) Column(name string) (int, error) {
	if col, ok := m.lookup(name); ok {
		return col, nil
	}
	return 0, fmt.Errorf("column %q not found in header row", name)
}

func (m HeaderMap) lookup(name string) (int, bool) {
	key := strings.TrimSpace(name)
	if col, ok := m[key]; ok {
		return col, true
	}
	low := strings.ToLower(key)
	for h, col := range m {
		if strings.ToLower(h) == low {
			return col, true
		}
	}
	return 0, false
}

// headerMapFromRow builds a HeaderMap from a raw header row, skipping blank
// headers. The first occurrence wins when a header repeats.
func headerMapFromRow(row []string) HeaderMap {
	m := make(HeaderMap, len(row))
	for i, h := range row {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, seen := m[name]; seen {
			continue
		}
		m[name] = i + 1
	}
	return m
}

// columnLetter converts a 1-based column position to its A1-notation letters
// (1 → A, 26 → Z, 27 → AA).
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
