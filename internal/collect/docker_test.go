package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

type fakeDockerAPI struct {
	images     []image.Summary
	containers []container.Summary
	listErr    error
	closed     bool
}

func (f *fakeDockerAPI) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	return f.images, f.listErr
}

func (f *fakeDockerAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.listErr
}

func (f *fakeDockerAPI) Close() error {
	f.closed = true
	return nil
}

func TestDockerCollect(t *testing.T) {
	fake := &fakeDockerAPI{
		images: []image.Summary{
			{
				ID:       "sha256:a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6",
				RepoTags: []string{"nginx:1.25", "nginx:latest"},
				Size:     187 * 1024 * 1024,
			},
			{
				ID:   "sha256:ffeeddccbbaa99887766554433221100",
				Size: 10 * 1024 * 1024,
			},
		},
		containers: []container.Summary{
			{
				ID:     "0123456789abcdef0123",
				Names:  []string{"/web"},
				Image:  "nginx:1.25",
				Status: "Up 3 hours",
			},
		},
	}

	c := &dockerCollector{newClient: func() (dockerAPI, error) { return fake, nil }}
	records, err := c.Collect(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	// Two tags plus one untagged image plus one container.
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if !fake.closed {
		t.Error("client should be closed after collection")
	}

	first := records[0]
	if first.Name != "nginx" || first.Version != "1.25" {
		t.Errorf("tag split wrong: %+v", first)
	}
	if first.Type != inventory.TypeImage || first.Source != "docker/image" {
		t.Errorf("image record wrong: %+v", first)
	}
	if first.Size != "187.0 MB" {
		t.Errorf("size wrong: %s", first.Size)
	}

	untagged := records[2]
	if untagged.Name != "ffeeddccbbaa" || untagged.Details != "untagged" {
		t.Errorf("untagged image wrong: %+v", untagged)
	}

	ctr := records[3]
	if ctr.Name != "web" || ctr.Type != inventory.TypeContainer {
		t.Errorf("container record wrong: %+v", ctr)
	}
	if ctr.Details != "nginx:1.25 (Up 3 hours)" {
		t.Errorf("container details wrong: %s", ctr.Details)
	}
}

func TestDockerCollectDaemonDown(t *testing.T) {
	c := &dockerCollector{newClient: func() (dockerAPI, error) {
		return nil, errors.New("cannot connect to the Docker daemon")
	}}

	if _, err := c.Collect(context.Background(), Options{}); err == nil {
		t.Error("unreachable daemon should surface as an error")
	}
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		tag         string
		wantName    string
		wantVersion string
	}{
		{"nginx:latest", "nginx", "latest"},
		{"nginx", "nginx", inventory.Unknown},
		{"registry.local:5000/app:v1", "registry.local:5000/app", "v1"},
		{"registry.local:5000/app", "registry.local:5000/app", inventory.Unknown},
	}

	for _, tt := range tests {
		name, version := splitTag(tt.tag)
		if name != tt.wantName || version != tt.wantVersion {
			t.Errorf("splitTag(%s) = (%s, %s), want (%s, %s)", tt.tag, name, version, tt.wantName, tt.wantVersion)
		}
	}
}
