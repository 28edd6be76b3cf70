package scanner

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// staticSource builds a definition that returns fixed records after an
// optional delay, so tests can force arrival-order scrambles.
func staticSource(id string, delay time.Duration, records ...inventory.Record) collect.Definition {
	return collect.Definition{
		ID: id,
		Collector: collect.CollectorFunc(func(ctx context.Context, opts collect.Options) ([]inventory.Record, error) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return records, nil
		}),
	}
}

func failingSource(id string, err error) collect.Definition {
	return collect.Definition{
		ID: id,
		Collector: collect.CollectorFunc(func(ctx context.Context, opts collect.Options) ([]inventory.Record, error) {
			return nil, err
		}),
	}
}

func newTestScanner(defs ...collect.Definition) *Scanner {
	return New(collect.NewRegistryFrom(defs, nil), nil)
}

func selection(ids ...string) collect.Selection {
	return collect.Selection{Enabled: ids}
}

func TestRunMergesAndSorts(t *testing.T) {
	// The slow source holds back the Repo records; they must still come
	// out first.
	s := newTestScanner(
		staticSource("flatpak", 0,
			inventory.Record{Name: "org.gimp.GIMP", Type: inventory.TypeFlatpak, Source: "flatpak"},
		),
		staticSource("repo", 30*time.Millisecond,
			inventory.Record{Name: "zlib", Type: inventory.TypeRepo, Source: "pacman/repo"},
			inventory.Record{Name: "bash", Type: inventory.TypeRepo, Source: "pacman/repo"},
		),
	)

	report, err := s.Run(context.Background(), Config{Selection: selection("flatpak", "repo")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var names []string
	for _, r := range report.Records {
		names = append(names, r.Name)
	}
	want := []string{"bash", "zlib", "org.gimp.GIMP"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	if report.Summary.Total != 3 {
		t.Errorf("summary total = %d, want 3", report.Summary.Total)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	// Jittered delays scramble arrival order between runs; output must
	// not care.
	build := func() *Scanner {
		return newTestScanner(
			staticSource("a", 10*time.Millisecond,
				inventory.Record{Name: "one", Type: inventory.TypeSnap, Source: "snap"}),
			staticSource("b", 0,
				inventory.Record{Name: "two", Type: inventory.TypeRepo, Source: "pacman/repo"}),
			staticSource("c", 5*time.Millisecond,
				inventory.Record{Name: "three", Type: inventory.TypePython, Source: "pip"}),
		)
	}
	cfg := Config{Selection: selection("a", "b", "c")}

	first, err := build().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := build().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Errorf("runs disagree:\n%+v\nvs\n%+v", first.Records, second.Records)
	}
}

func TestRunCollectorFailureIsWarning(t *testing.T) {
	s := newTestScanner(
		staticSource("repo", 0,
			inventory.Record{Name: "bash", Type: inventory.TypeRepo, Source: "pacman/repo"}),
		failingSource("docker", errors.New("daemon unreachable")),
		staticSource("pip", 0,
			inventory.Record{Name: "requests", Type: inventory.TypePython, Source: "pip"}),
	)

	report, err := s.Run(context.Background(), Config{Selection: selection("repo", "docker", "pip")})
	if err != nil {
		t.Fatalf("a collector failure must not abort the run: %v", err)
	}

	if report.Summary.Total != 2 {
		t.Errorf("surviving sources should contribute, got %d records", report.Summary.Total)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %v", report.Warnings)
	}
	if report.Warnings[0].Source != "docker" {
		t.Errorf("warning source = %s, want docker", report.Warnings[0].Source)
	}
}

func TestRunSlowCollectorTimedOutAlone(t *testing.T) {
	hung := collect.Definition{
		ID: "hung",
		Collector: collect.CollectorFunc(func(ctx context.Context, opts collect.Options) ([]inventory.Record, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}
	s := newTestScanner(
		hung,
		staticSource("repo", 0,
			inventory.Record{Name: "bash", Type: inventory.TypeRepo, Source: "pacman/repo"}),
	)

	start := time.Now()
	report, err := s.Run(context.Background(), Config{
		Selection: selection("hung", "repo"),
		Timeout:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("run did not respect the collector timeout")
	}

	if report.Summary.Total != 1 {
		t.Errorf("healthy source should survive, got %d records", report.Summary.Total)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", report.Warnings)
	}
	if !errors.Is(report.Warnings[0].Err, context.DeadlineExceeded) {
		t.Errorf("warning should carry the deadline error, got %v", report.Warnings[0].Err)
	}
}

func TestRunFilterAppliedAtIngestion(t *testing.T) {
	repo := staticSource("repo", 0,
		inventory.Record{Name: "libfoo", Type: inventory.TypeRepo, Source: "pacman/repo", Orphaned: true},
		inventory.Record{Name: "bash", Type: inventory.TypeRepo, Source: "pacman/repo"},
		inventory.Record{Name: "libbar", Type: inventory.TypeRepo, Source: "pacman/repo", Orphaned: true},
	)
	repo.OrphanCapable = true
	s := newTestScanner(repo)

	report, err := s.Run(context.Background(), Config{
		Selection: collect.Selection{Enabled: []string{"repo"}},
		Filter:    inventory.Filter{OrphansOnly: true, Term: "foo"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Summary.Total != 1 {
		t.Fatalf("expected 1 record, got %d", report.Summary.Total)
	}
	if report.Records[0].Name != "libfoo" {
		t.Errorf("wrong record survived: %s", report.Records[0].Name)
	}
	// Every surviving record satisfies the active predicates.
	for _, r := range report.Records {
		if !r.Orphaned {
			t.Errorf("non-orphan %s in orphans-only output", r.Name)
		}
	}
}

func TestRunInvalidRecordsDropped(t *testing.T) {
	s := newTestScanner(
		staticSource("repo", 0,
			inventory.Record{Name: "", Type: inventory.TypeRepo, Source: "pacman/repo"},
			inventory.Record{Name: "ok", Type: inventory.TypeRepo, Source: "pacman/repo"},
			inventory.Record{Name: "\x01\x02", Type: inventory.TypeRepo, Source: "pacman/repo"},
		),
	)

	report, err := s.Run(context.Background(), Config{Selection: selection("repo")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summary.Total != 1 || report.Records[0].Name != "ok" {
		t.Errorf("invalid records should be dropped, got %+v", report.Records)
	}
}

func TestRunRecordsSanitizedDefensively(t *testing.T) {
	s := newTestScanner(
		staticSource("repo", 0,
			inventory.Record{Name: "evil\tname", Type: inventory.TypeRepo, Source: "pacman/repo", Details: "line\nbreak"},
		),
	)

	report, err := s.Run(context.Background(), Config{Selection: selection("repo")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := report.Records[0]
	if got.Name != "evil name" || got.Details != "line break" {
		t.Errorf("record not sanitized: %+v", got)
	}
}

func TestRunEmptyReportIsNotAnError(t *testing.T) {
	s := newTestScanner(staticSource("repo", 0))

	report, err := s.Run(context.Background(), Config{
		Selection: selection("repo"),
		Filter:    inventory.Filter{Term: "matches-nothing"},
	})
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if report.Summary.Total != 0 {
		t.Errorf("expected empty report, got %d records", report.Summary.Total)
	}
}

func TestRunSkipsCarriedIntoReport(t *testing.T) {
	s := newTestScanner(staticSource("repo", 0))

	skips := []collect.Skip{{ID: "docker", Reason: "docker not found"}}
	report, err := s.Run(context.Background(), Config{
		Selection: collect.Selection{Enabled: []string{"repo"}, Skipped: skips},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(report.Skipped, skips) {
		t.Errorf("skips = %v, want %v", report.Skipped, skips)
	}
}

func TestValidateOrphansNeedCapableSource(t *testing.T) {
	orphanCapable := collect.Definition{
		ID:            "repo",
		OrphanCapable: true,
		Collector:     collect.CollectorFunc(func(ctx context.Context, opts collect.Options) ([]inventory.Record, error) { return nil, nil }),
	}
	plain := staticSource("pip", 0)

	s := New(collect.NewRegistryFrom([]collect.Definition{orphanCapable, plain}, nil), nil)

	err := s.Validate(Config{
		Selection: selection("pip"),
		Filter:    inventory.Filter{OrphansOnly: true},
	})
	if !errors.Is(err, ErrNoOrphanSource) {
		t.Errorf("expected ErrNoOrphanSource, got %v", err)
	}

	if err := s.Validate(Config{
		Selection: selection("repo", "pip"),
		Filter:    inventory.Filter{OrphansOnly: true},
	}); err != nil {
		t.Errorf("orphan-capable selection should validate, got %v", err)
	}
}

func TestValidateUnknownEnabledSource(t *testing.T) {
	s := newTestScanner(staticSource("repo", 0))

	err := s.Validate(Config{Selection: selection("repo", "ghost")})
	if !errors.Is(err, collect.ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestRunProgressCallback(t *testing.T) {
	s := newTestScanner(
		staticSource("a", 0, inventory.Record{Name: "x", Type: inventory.TypeSnap, Source: "snap"}),
		staticSource("b", 5*time.Millisecond),
		failingSource("c", errors.New("nope")),
	)

	var mu sync.Mutex
	seen := map[string]bool{}
	totals := map[int]bool{}
	var lastDone int
	s.OnCollectorDone = func(source string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		seen[source] = true
		totals[total] = true
		if done > lastDone {
			lastDone = done
		}
	}

	if _, err := s.Run(context.Background(), Config{Selection: selection("a", "b", "c")}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(seen) != 3 {
		t.Errorf("callback should fire once per source, saw %v", seen)
	}
	if !reflect.DeepEqual(totals, map[int]bool{3: true}) {
		t.Errorf("total should always report 3, saw %v", totals)
	}
	if lastDone != 3 {
		t.Errorf("final done = %d, want 3", lastDone)
	}
}

func TestRunBoundedParallelism(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0

	track := func(id string) collect.Definition {
		return collect.Definition{
			ID: id,
			Collector: collect.CollectorFunc(func(ctx context.Context, opts collect.Options) ([]inventory.Record, error) {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()
				time.Sleep(20 * time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil, nil
			}),
		}
	}

	s := newTestScanner(track("a"), track("b"), track("c"), track("d"))
	_, err := s.Run(context.Background(), Config{
		Selection: selection("a", "b", "c", "d"),
		Jobs:      2,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if peak > 2 {
		t.Errorf("jobs limit ignored: peak concurrency %d", peak)
	}
}
