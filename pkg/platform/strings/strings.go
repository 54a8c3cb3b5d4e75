// Package strings holds string-list helpers shared by config parsing and the
// repository.
package strings

import "strings"

// Compact trims every value and drops empty and repeated ones. First occurrences
// keep their order.
func Compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList splits a separated list such as "a, b,,a" into its compacted parts.
func SplitList(s, sep string) []string {
	return Compact(strings.Split(s, sep))
}
