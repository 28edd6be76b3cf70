package inventory

import "sync"

// Store accumulates accepted records while collectors run concurrently.
// Add is safe for concurrent callers. The live type counters exist only to
// drive progress display; final counts always come from Summarize over the
// sorted snapshot.
type Store struct {
	mu      sync.Mutex
	records []Record
	counts  map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{counts: make(map[string]int)}
}

// Add appends an accepted record.
func (s *Store) Add(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	s.counts[r.Type]++
}

// Len returns the number of accepted records so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// TypeCounts returns a copy of the live per-type counters.
func (s *Store) TypeCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Records returns a copy of the accumulated records. Callers take this
// once all collectors have settled; the copy is theirs to sort.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
