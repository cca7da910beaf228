package domain

import "strings"

// normalizeID case-folds, trims, and collapses non-alphanumeric runs in a
// raw cluster/area name into a stable identifier, matching the convention
// area/cluster catalogs use when loaded from INI-like section files (spec
// §6).
func normalizeID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(trimmed))
	prevCollapsed := false
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevCollapsed = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
			prevCollapsed = false
		default:
			if !prevCollapsed && b.Len() > 0 {
				b.WriteByte('_')
				prevCollapsed = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
