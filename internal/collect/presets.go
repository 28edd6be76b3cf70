package collect

import (
	"fmt"
	"sort"
	"strings"
)

// builtinPresets returns the stock preset groups. User presets from the
// config file are merged on top and win on name collision.
func builtinPresets() map[string][]string {
	return map[string][]string{
		"system":     {"repo", "aur", "apt", "flatpak", "snap"},
		"dev":        {"pip", "npm", "cargo", "gem"},
		"containers": {"docker"},
		"ai":         {"ollama"},
		"local":      {"pathbin"},
	}
}

// Preset is one named source bundle, for listing.
type Preset struct {
	Name    string
	Sources []string
	Builtin bool
}

// Presets returns the merged preset table, sorted by name.
func (r *Registry) Presets(user map[string][]string) []Preset {
	var out []Preset
	for name, sources := range r.presets {
		if _, shadowed := user[name]; shadowed {
			continue
		}
		out = append(out, Preset{Name: name, Sources: sources, Builtin: true})
	}
	for name, sources := range user {
		out = append(out, Preset{Name: name, Sources: sources})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolvePreset expands a preset into a selection, filtered to the
// sources available on this host. Sources dropped for unavailability are
// always reported in Skipped rather than silently vanishing, so a run
// that quietly covers less than the preset promises cannot happen.
// An unknown preset name, or an unknown source inside a user preset, is
// a configuration error.
func (r *Registry) ResolvePreset(name string, user map[string][]string) (Selection, error) {
	sources, ok := user[name]
	if !ok {
		sources, ok = r.presets[name]
	}
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, presetNames(r, user))
	}
	if err := r.checkKnown(sources); err != nil {
		return Selection{}, fmt.Errorf("preset %q: %w", name, err)
	}

	requested := make(map[string]bool, len(sources))
	for _, id := range sources {
		requested[id] = true
	}
	return r.resolve(func(d Definition) bool { return requested[d.ID] }), nil
}

func presetNames(r *Registry, user map[string][]string) string {
	var names []string
	for _, p := range r.Presets(user) {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
