package core

import (
	"sort"
	"strings"
)

// ParsePrefix splits a prefixed message like "ilpo.play darude sandstorm"
// into the command name and its arguments. Prefixes match case-insensitively,
// the longest one first.
func ParsePrefix(content string, prefixes []string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	lower := strings.ToLower(content)

	sorted := append([]string(nil), prefixes...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, p := range sorted {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || !strings.HasPrefix(lower, p) {
			continue
		}
		fields := strings.Fields(content[len(p):])
		if len(fields) == 0 {
			return "", nil, false
		}
		return strings.ToLower(fields[0]), fields[1:], true
	}
	return "", nil, false
}
