package search

import "strings"

// Matches reports whether name contains term, ignoring case. The term is
// used as given; callers decide whether a blank term means "match all".
func Matches(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// Filter returns the candidates matching term in their original order. A
// blank term returns candidates itself, not a copy.
func Filter(candidates []string, term string) []string {
	if strings.TrimSpace(term) == "" {
		return candidates
	}

	lower := strings.ToLower(term)
	matched := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if strings.Contains(strings.ToLower(name), lower) {
			matched = append(matched, name)
		}
	}
	return matched
}
