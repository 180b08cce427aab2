package resolver

import "regexp"

// varRefRegexp matches the referenced name of a var() occurrence. Occurrences
// nested inside calc(), min(), max() or another var()'s fallback are plain
// text matches too, so every occurrence in a value is found, duplicates
// included, in source order.
var varRefRegexp = regexp.MustCompile(`var\(\s*(--[\w-]+)`)

// FindVarNames returns the referenced custom property name of every var()
// occurrence in value, one entry per occurrence
func FindVarNames(value string) []string {
	matches := varRefRegexp.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return names
}
