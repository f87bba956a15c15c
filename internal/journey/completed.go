package journey

import (
	"sort"
	"strings"
)

// CompletedSet is a session's single completed-set. Sub-graph completions
// live in the same set as root completions, scoped "<parentID>/<unitID>",
// which keeps each graph's id namespace independent while round-tripping
// through one flat list of ids. Entries are only ever added; the set is
// discarded with its session.
type CompletedSet map[string]bool

func completedKey(scope, id string) string {
	if scope == "" {
		return id
	}
	return scope + "/" + id
}

// Add records a completion within the given scope ("" = root graph,
// otherwise the id of the unit owning the sub-graph).
func (c CompletedSet) Add(scope, id string) {
	c[completedKey(scope, id)] = true
}

// Has reports whether a unit is completed within the given scope.
func (c CompletedSet) Has(scope, id string) bool {
	return c[completedKey(scope, id)]
}

// View projects the set onto one graph's namespace as a plain id set the
// resolver can consume. The root view holds every unscoped id; a
// sub-graph view holds the ids under its parent's prefix, stripped.
func (c CompletedSet) View(scope string) map[string]bool {
	out := make(map[string]bool)
	if scope == "" {
		for k := range c {
			if !strings.Contains(k, "/") {
				out[k] = true
			}
		}
		return out
	}
	prefix := scope + "/"
	for k := range c {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, "/") {
			out[rest] = true
		}
	}
	return out
}

// Keys returns every scoped key, sorted for deterministic persistence.
func (c CompletedSet) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of completions across all scopes.
func (c CompletedSet) Len() int {
	return len(c)
}
