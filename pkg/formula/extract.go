package formula

import "regexp"

var referencePattern = regexp.MustCompile(`\$\{([^{}]*)\}`)

// ExtractParentIDs returns the contents of every ${...} marker in formula,
// in order of appearance with duplicates kept. The scan is purely lexical:
// markers with unbalanced braces produce no match. Marker contents are
// returned verbatim.
func ExtractParentIDs(formula string) []string {
	matches := referencePattern.FindAllStringSubmatch(formula, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// UniqueParentIDs is ExtractParentIDs with duplicates removed, first
// occurrence wins.
func UniqueParentIDs(formula string) []string {
	all := ExtractParentIDs(formula)
	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, id := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
