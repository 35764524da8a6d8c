// Package mentions resolves @name tokens in free text against a set of
// known agent ids.
package mentions

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_-]+)`)

// Extract returns the agent ids mentioned in text, case-folded,
// deduplicated in order of first appearance, and filtered to the allowed
// set. Tokens that do not match a known id are ignored.
func Extract(text string, allowed []string) []string {
	known := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		known[strings.ToLower(id)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		id := strings.ToLower(m[1])
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
