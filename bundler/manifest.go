package bundler

import (
	"gopkg.in/yaml.v3"
)

// ManifestEntry describes one bundled module.
type ManifestEntry struct {
	Path    string   `yaml:"path"`
	Prefix  string   `yaml:"prefix"`
	Exports []Export `yaml:"exports,omitempty"`
}

// Manifest lists the modules of set in order with their mangled exports.
func Manifest(set *ModuleSet) []ManifestEntry {
	entries := make([]ManifestEntry, 0, set.Len())
	for _, m := range set.Modules {
		entries = append(entries, ManifestEntry{Path: m.Path, Prefix: m.Prefix(), Exports: m.Exports})
	}
	return entries
}

// MarshalManifest renders the manifest of set as YAML.
func MarshalManifest(set *ModuleSet) ([]byte, error) {
	return yaml.Marshal(struct {
		Modules []ManifestEntry `yaml:"modules"`
	}{Manifest(set)})
}
