package skills

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize parses raw comma-separated skill text into a canonical skill
// set: tokens are trimmed, lowercased, empties dropped, and duplicates
// removed. The result is sorted so that equal inputs always produce equal
// slices regardless of token order: set semantics, not list semantics.
func Normalize(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		s := strings.ToLower(strings.TrimSpace(tok))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Key returns the canonical cache-key form of a normalized skill set.
// Normalize already sorts, so equal sets always produce equal keys.
func Key(set []string) string {
	return strings.Join(set, ",")
}

// Title converts a single token to title case ("machine learning" →
// "Machine Learning"). A fresh caser per call: cases.Caser carries internal
// state and is not safe for concurrent reuse.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
