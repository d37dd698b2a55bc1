// Package names builds grouping keys for person names so the same player
// reported as "Smith, John" by one provider and "John Smith" by another is
// recognized as one entity. Keys are for comparison only, never displayed.
package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey produces a normalized comparison key for a person's name.
//
// A string containing a comma is treated as "Last, First[, Suffix...]": the
// comma-separated components are reversed and rejoined. This is a heuristic;
// names with legitimately embedded commas are mishandled (see package tests
// for the documented cases). The result is NFC-normalized, lowercased, and
// stripped of everything that is not an ASCII letter.
func NormalizeKey(name string) string {
	if strings.Contains(name, ",") {
		parts := strings.Split(name, ",")
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		name = strings.Join(parts, " ")
	}

	name = norm.NFC.String(name)
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
