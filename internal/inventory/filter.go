package inventory

import "strings"

// Filter is the static per-run record filter. Both predicates are pure
// functions of the record and the filter itself, so acceptance never
// depends on the order records arrive in.
type Filter struct {
	OrphansOnly bool
	Term        string // case-insensitive name substring, empty matches all
}

// Matches reports whether r passes every active predicate.
func (f Filter) Matches(r Record) bool {
	if f.OrphansOnly && !r.Orphaned {
		return false
	}
	if f.Term != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Term)) {
		return false
	}
	return true
}

// Active reports whether any predicate is configured.
func (f Filter) Active() bool {
	return f.OrphansOnly || f.Term != ""
}
