// Package config loads the cache.* keys spec §6 lists from a YAML
// file, using gopkg.in/yaml.v2 the way rclone's own go.mod pins it for
// its own config layer. CLI flags such as --jobs or --remote are
// separate from this file; no flag overrides a cache.* value.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mribeirodantas/dvc/internal/link"
)

// Shared selects the mode matrix a materializer uses for working-tree
// content (spec §6's cache.shared key).
type Shared string

const (
	SharedNone  Shared = "none"
	SharedGroup Shared = "group"
)

// Cache holds the cache.* keys of spec §6.
type Cache struct {
	// Type is cache.type: an ordered YAML list of strategy names,
	// e.g. [reflink, hardlink, copy]. A bare scalar ("reflink") or a
	// comma-separated string is not accepted and fails to parse.
	Type []string `yaml:"type"`
	// Shared is cache.shared: "none" or "group".
	Shared Shared `yaml:"shared"`
	// Protected is cache.protected.
	Protected bool `yaml:"protected"`
	// Dir is the cache root; not part of spec §6's key list but
	// needed to construct a Layout, so it's read from the same file
	// under the conventional dvc "cache.dir" config key.
	Dir string `yaml:"dir"`
}

// Config is the full on-disk configuration document.
type Config struct {
	Cache Cache `yaml:"cache"`
}

// Default returns the configuration spec §4.3 calls out as the
// materializer's defaults: [reflink, copy], cache.shared=none,
// cache.protected=true.
func Default() *Config {
	return &Config{
		Cache: Cache{
			Type:      []string{"reflink", "copy"},
			Shared:    SharedNone,
			Protected: true,
			Dir:       ".dvc/cache",
		},
	}
}

// Load reads and parses path, falling back to Default() fields for
// whatever the file omits.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.Cache.Type) == 0 {
		cfg.Cache.Type = Default().Cache.Type
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = Default().Cache.Dir
	}
	return cfg, nil
}

// Strategies parses Cache.Type into the ordered link.Strategy list the
// materializer consumes.
func (c *Cache) Strategies() ([]link.Strategy, error) {
	return link.ParseStrategies(c.Type)
}

// Modes returns the mode matrix Cache.Shared selects.
func (c *Cache) Modes() link.ModeMatrix {
	if c.Shared == SharedGroup {
		return link.SharedModes
	}
	return link.DefaultModes
}
