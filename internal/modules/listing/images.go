package listing

import "strings"

// normalizeImages trims stored image paths and drops blanks and duplicates.
// A nil input becomes an empty slice so the column always holds a JSON array.
func normalizeImages(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
