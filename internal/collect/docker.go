package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	dockerclient "github.com/docker/docker/client"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// dockerAPI is the slice of the Docker Engine API this collector needs.
// Tests substitute a fake.
type dockerAPI interface {
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

// dockerCollector reports local images and containers through the Engine
// API. Availability is still gated on the docker CLI so the registry's
// command checks stay uniform; the actual listing talks to the daemon
// socket directly.
type dockerCollector struct {
	newClient func() (dockerAPI, error)
}

func newDockerCollector() *dockerCollector {
	return &dockerCollector{
		newClient: func() (dockerAPI, error) {
			cli, err := dockerclient.NewClientWithOpts(
				dockerclient.FromEnv,
				dockerclient.WithAPIVersionNegotiation(),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create docker client: %w", err)
			}
			return cli, nil
		},
	}
}

func (c *dockerCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	cli, err := c.newClient()
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	containers, err := cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var records []inventory.Record
	for _, img := range images {
		records = append(records, imageRecords(img)...)
	}
	for _, ctr := range containers {
		records = append(records, containerRecord(ctr))
	}
	return records, nil
}

// imageRecords maps one image summary to records, one per tag. Untagged
// images surface under their short digest so they still show up.
func imageRecords(img image.Summary) []inventory.Record {
	size := inventory.FormatSize(img.Size)
	id := shortID(img.ID)

	if len(img.RepoTags) == 0 {
		return []inventory.Record{inventory.Record{
			Name:    id,
			Type:    inventory.TypeImage,
			Source:  "docker/image",
			Details: "untagged",
			Version: inventory.Unknown,
			Size:    size,
		}.Sanitize()}
	}

	var records []inventory.Record
	for _, tag := range img.RepoTags {
		name, version := splitTag(tag)
		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeImage,
			Source:  "docker/image",
			Details: "id " + id,
			Version: version,
			Size:    size,
		}.Sanitize())
	}
	return records
}

func containerRecord(ctr container.Summary) inventory.Record {
	name := shortID(ctr.ID)
	if len(ctr.Names) > 0 {
		name = strings.TrimPrefix(ctr.Names[0], "/")
	}
	details := ctr.Image
	if ctr.Status != "" {
		details = fmt.Sprintf("%s (%s)", ctr.Image, ctr.Status)
	}
	return inventory.Record{
		Name:    name,
		Type:    inventory.TypeContainer,
		Source:  "docker/container",
		Details: details,
		Version: inventory.Unknown,
		Size:    inventory.Unknown,
	}.Sanitize()
}

// splitTag separates "nginx:1.25" into name and version. The split is on
// the last colon so registry ports ("host:5000/app:v1") stay intact.
func splitTag(tag string) (string, string) {
	i := strings.LastIndexByte(tag, ':')
	if i < 0 || strings.ContainsRune(tag[i:], '/') {
		return tag, inventory.Unknown
	}
	return tag[:i], tag[i+1:]
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
