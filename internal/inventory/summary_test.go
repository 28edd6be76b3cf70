package inventory

import "testing"

func TestSummarize(t *testing.T) {
	sorted := []Record{
		{Name: "bash", Type: TypeRepo, Source: "pacman/repo"},
		{Name: "libfoo", Type: TypeRepo, Source: "pacman/repo", Orphaned: true},
		{Name: "libold", Type: TypeRepo, Source: "pacman/repo", Orphaned: true},
		{Name: "org.gimp.GIMP", Type: TypeFlatpak, Source: "flatpak"},
		{Name: "nginx", Type: TypeImage, Source: "docker/image"},
	}

	sum := Summarize(sorted)

	if sum.Total != 5 {
		t.Errorf("expected Total 5, got %d", sum.Total)
	}
	if len(sum.Types) != 3 {
		t.Fatalf("expected 3 type partitions, got %d", len(sum.Types))
	}
	// First-seen order of the sorted input.
	if sum.Types[0].Type != TypeRepo {
		t.Errorf("expected first partition Repo, got %s", sum.Types[0].Type)
	}
	if sum.Types[0].Count != 3 {
		t.Errorf("expected 3 Repo records, got %d", sum.Types[0].Count)
	}
	if sum.Types[0].Orphans != 2 {
		t.Errorf("expected 2 Repo orphans, got %d", sum.Types[0].Orphans)
	}
	if sum.Orphans() != 2 {
		t.Errorf("expected 2 orphans total, got %d", sum.Orphans())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Total != 0 {
		t.Errorf("expected Total 0, got %d", sum.Total)
	}
	if len(sum.Types) != 0 {
		t.Errorf("expected no type partitions, got %d", len(sum.Types))
	}
}

func TestSummarizeCountsMatchPartitions(t *testing.T) {
	records := []Record{
		{Name: "a", Type: TypeRepo, Source: "pacman/repo"},
		{Name: "b", Type: TypeSnap, Source: "snap"},
		{Name: "c", Type: TypeSnap, Source: "snap"},
		{Name: "d", Type: TypePython, Source: "pip"},
	}
	Sort(records)

	sum := Summarize(records)

	total := 0
	for _, tc := range sum.Types {
		n := 0
		for _, r := range records {
			if r.Type == tc.Type {
				n++
			}
		}
		if tc.Count != n {
			t.Errorf("type %s: count %d, partition has %d", tc.Type, tc.Count, n)
		}
		total += tc.Count
	}
	if total != sum.Total {
		t.Errorf("per-type counts sum to %d, Total is %d", total, sum.Total)
	}
}
