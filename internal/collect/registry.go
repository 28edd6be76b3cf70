package collect

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration validation. Both are fatal before any
// collector runs.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Definition describes one catalog entry.
type Definition struct {
	ID          string
	Description string

	// Commands lists the external commands the source depends on; the
	// source is available when any one of them resolves on PATH. An empty
	// list means always available (filesystem-backed sources).
	Commands []string

	// OrphanCapable marks sources that can report orphaned packages.
	OrphanCapable bool

	// AppsOnlyCapable marks sources that can tell top-level applications
	// from dependencies or runtimes.
	AppsOnlyCapable bool

	Collector Collector
}

// Available reports whether the source can run on this host.
func (d Definition) Available() bool {
	if len(d.Commands) == 0 {
		return true
	}
	for _, c := range d.Commands {
		if CommandExists(c) {
			return true
		}
	}
	return false
}

// unavailableReason names the missing commands for skip reporting.
func (d Definition) unavailableReason() string {
	return fmt.Sprintf("%s not found", strings.Join(d.Commands, "/"))
}

// Registry is the fixed catalog of known collectors, keyed by source
// identifier. The catalog order is the deterministic order used for
// progress display and the sources listing.
type Registry struct {
	defs    []Definition
	index   map[string]int
	presets map[string][]string
}

// NewRegistryFrom builds a registry from an explicit catalog and preset
// table. New sources plug in here without any change to the pipeline;
// NewRegistry assembles the stock catalog on top of this.
func NewRegistryFrom(defs []Definition, presets map[string][]string) *Registry {
	if presets == nil {
		presets = make(map[string][]string)
	}
	r := &Registry{index: make(map[string]int), presets: presets}
	for _, d := range defs {
		r.index[d.ID] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r
}

// NewRegistry builds the full catalog.
func NewRegistry() *Registry {
	// One orphan set per registry, shared by the two pacman variants.
	orphans := &pacmanOrphanSet{}

	return NewRegistryFrom([]Definition{
		{
			ID:              "repo",
			Description:     "native distro packages (pacman)",
			Commands:        []string{"pacman"},
			OrphanCapable:   true,
			AppsOnlyCapable: true,
			Collector:       &pacmanCollector{orphans: orphans},
		},
		{
			ID:              "aur",
			Description:     "foreign/AUR packages (pacman)",
			Commands:        []string{"pacman"},
			OrphanCapable:   true,
			AppsOnlyCapable: true,
			Collector:       &pacmanCollector{foreign: true, orphans: orphans},
		},
		{
			ID:              "apt",
			Description:     "Debian packages (dpkg)",
			Commands:        []string{"dpkg-query"},
			AppsOnlyCapable: true,
			Collector:       &aptCollector{},
		},
		{
			ID:              "flatpak",
			Description:     "Flatpak applications and runtimes",
			Commands:        []string{"flatpak"},
			AppsOnlyCapable: true,
			Collector:       &flatpakCollector{},
		},
		{
			ID:          "snap",
			Description: "Snap packages",
			Commands:    []string{"snap"},
			Collector:   &snapCollector{},
		},
		{
			ID:          "docker",
			Description: "Docker images and containers",
			Commands:    []string{"docker"},
			Collector:   newDockerCollector(),
		},
		{
			ID:          "pip",
			Description: "Python packages (pip)",
			Commands:    []string{"pip", "pip3"},
			Collector:   &pipCollector{},
		},
		{
			ID:          "npm",
			Description: "global Node packages (npm)",
			Commands:    []string{"npm"},
			Collector:   &npmCollector{},
		},
		{
			ID:          "cargo",
			Description: "cargo-installed Rust crates",
			Commands:    []string{"cargo"},
			Collector:   &cargoCollector{},
		},
		{
			ID:          "gem",
			Description: "local Ruby gems",
			Commands:    []string{"gem"},
			Collector:   &gemCollector{},
		},
		{
			ID:          "ollama",
			Description: "local LLM models (Ollama)",
			Commands:    []string{"ollama"},
			Collector:   newOllamaCollector(),
		},
		{
			ID:          "pathbin",
			Description: "loose executables in local bin directories",
			Collector:   newPathbinCollector(),
		},
	}, builtinPresets())
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns the catalog in order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// IDs returns all source identifiers in catalog order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.defs))
	for i, d := range r.defs {
		ids[i] = d.ID
	}
	return ids
}

// Skip records a source dropped during resolution, with the reason.
type Skip struct {
	ID     string
	Reason string
}

// Selection is the resolved source set for one run. Enabled is in catalog
// order. Skipped lists sources the configuration asked for that cannot
// run on this host.
type Selection struct {
	Enabled []string
	Skipped []Skip
}

// HasOrphanCapable reports whether any enabled source can detect orphans.
func (r *Registry) HasOrphanCapable(sel Selection) bool {
	for _, id := range sel.Enabled {
		if d, ok := r.Lookup(id); ok && d.OrphanCapable {
			return true
		}
	}
	return false
}

// EnabledSources resolves the source set for a run. include, when
// non-empty, names the only sources to query; exclude removes sources;
// overrides carries per-source enable/disable from the config file.
// Precedence: include > exclude > overrides > default (every available
// source). Unknown identifiers anywhere are configuration errors. A
// requested source that is not available on this host becomes a Skip,
// never an error.
func (r *Registry) EnabledSources(include, exclude []string, overrides map[string]bool) (Selection, error) {
	if err := r.checkKnown(include); err != nil {
		return Selection{}, err
	}
	if err := r.checkKnown(exclude); err != nil {
		return Selection{}, err
	}
	for id := range overrides {
		if _, ok := r.index[id]; !ok {
			return Selection{}, r.unknownSourceError(id)
		}
	}

	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	// Explicit include list: exactly the requested sources, minus
	// exclusions, availability-checked.
	if len(include) > 0 {
		requested := make(map[string]bool, len(include))
		for _, id := range include {
			requested[id] = true
		}
		return r.resolve(func(d Definition) bool {
			return requested[d.ID] && !excluded[d.ID]
		}), nil
	}

	// Default set: every available source, shaped by overrides and
	// exclusions. A source that is simply absent from the host is not a
	// skip on this path; only one the config force-enabled is worth
	// reporting.
	sel := r.resolve(func(d Definition) bool {
		if excluded[d.ID] {
			return false
		}
		if on, ok := overrides[d.ID]; ok {
			return on
		}
		return true
	})
	reported := sel.Skipped[:0]
	for _, s := range sel.Skipped {
		if overrides[s.ID] {
			reported = append(reported, s)
		}
	}
	sel.Skipped = reported
	return sel, nil
}

// resolve walks the catalog applying want, splitting the wanted sources
// into available and skipped.
func (r *Registry) resolve(want func(Definition) bool) Selection {
	var sel Selection
	for _, d := range r.defs {
		if !want(d) {
			continue
		}
		if d.Available() {
			sel.Enabled = append(sel.Enabled, d.ID)
			continue
		}
		sel.Skipped = append(sel.Skipped, Skip{ID: d.ID, Reason: d.unavailableReason()})
	}
	return sel
}

func (r *Registry) checkKnown(ids []string) error {
	for _, id := range ids {
		if _, ok := r.index[id]; !ok {
			return r.unknownSourceError(id)
		}
	}
	return nil
}

func (r *Registry) unknownSourceError(id string) error {
	return fmt.Errorf("%w: %q (known sources: %s)", ErrUnknownSource, id, strings.Join(r.IDs(), ", "))
}
