package inventory

import "testing"

func TestFilterMatches(t *testing.T) {
	orphan := Record{Name: "libfoo", Type: TypeRepo, Source: "pacman/repo", Orphaned: true}
	kept := Record{Name: "Firefox", Type: TypeFlatpak, Source: "flatpak"}

	tests := []struct {
		name   string
		filter Filter
		rec    Record
		want   bool
	}{
		{"empty_filter_accepts_all", Filter{}, kept, true},
		{"orphans_only_accepts_orphan", Filter{OrphansOnly: true}, orphan, true},
		{"orphans_only_rejects_non_orphan", Filter{OrphansOnly: true}, kept, false},
		{"term_matches_case_insensitive", Filter{Term: "fire"}, kept, true},
		{"term_matches_upper_needle", Filter{Term: "FOX"}, kept, true},
		{"term_rejects_non_substring", Filter{Term: "chrome"}, kept, false},
		{"both_predicates_must_pass", Filter{OrphansOnly: true, Term: "lib"}, orphan, true},
		{"term_fails_even_when_orphan", Filter{OrphansOnly: true, Term: "zlib"}, orphan, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.rec); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v", tt.rec.Name, got, tt.want)
			}
		})
	}
}

func TestFilterActive(t *testing.T) {
	if (Filter{}).Active() {
		t.Error("empty filter should not be active")
	}
	if !(Filter{OrphansOnly: true}).Active() {
		t.Error("orphans-only filter should be active")
	}
	if !(Filter{Term: "git"}).Active() {
		t.Error("term filter should be active")
	}
}
