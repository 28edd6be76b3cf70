package inventory

// Summary holds the counts derived from a finished, sorted record set.
type Summary struct {
	Total int
	Types []TypeCount
}

// TypeCount is the tally for one record type.
type TypeCount struct {
	Type    string
	Count   int
	Orphans int
}

// Summarize recomputes all counts from the final sorted sequence in one
// single-threaded pass. The store's live counters are never consulted:
// they can drift from the truth when filters reject records or when
// concurrent collectors interleave, and this pass is the source of truth.
// Types appear in first-seen order, which for a sorted input keeps Repo
// at the top.
func Summarize(sorted []Record) Summary {
	sum := Summary{Total: len(sorted)}
	index := make(map[string]int)
	for _, r := range sorted {
		i, ok := index[r.Type]
		if !ok {
			i = len(sum.Types)
			index[r.Type] = i
			sum.Types = append(sum.Types, TypeCount{Type: r.Type})
		}
		sum.Types[i].Count++
		if r.Orphaned {
			sum.Types[i].Orphans++
		}
	}
	return sum
}

// Orphans returns the total orphan count across all types.
func (s Summary) Orphans() int {
	n := 0
	for _, t := range s.Types {
		n += t.Orphans
	}
	return n
}
